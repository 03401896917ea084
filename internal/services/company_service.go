package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainhub/internal/authz"
	"trainhub/internal/caching"
	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

// CompanyService covers brand administration outside the provisioning saga:
// edits, program assignment, hierarchy listing, soft deletion, logo storage.
// New brands come only from the saga.
type CompanyService interface {
	GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, actor *models.Profile, req *UpdateCompanyRequest) error
	AssignPrograms(ctx context.Context, actor *models.Profile, companyID uuid.UUID, programIDs []uuid.UUID) error
	SoftDelete(ctx context.Context, actor *models.Profile, id uuid.UUID) error
	ListChildren(ctx context.Context, actor *models.Profile, parentBrandID uuid.UUID) ([]*models.Company, error)
	List(ctx context.Context, actor *models.Profile, limit, offset int) ([]*models.Company, error)
	UploadLogo(ctx context.Context, actor *models.Profile, companyID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
}

type UpdateCompanyRequest struct {
	ID       uuid.UUID
	Name     string `json:"name" validate:"required"`
	MaxUsers *int   `json:"max_users"`
}

type companyService struct {
	companies repositories.CompanyRepository
	programs  repositories.ProgramRepository
	assets    AssetStorage
	cache     caching.CacheService
	logger    *zap.Logger
}

func NewCompanyService(
	companies repositories.CompanyRepository,
	programs repositories.ProgramRepository,
	assets AssetStorage,
	cache caching.CacheService,
	logger *zap.Logger,
) CompanyService {
	return &companyService{
		companies: companies,
		programs:  programs,
		assets:    assets,
		cache:     cache,
		logger:    logger,
	}
}

// canManage reports whether actor may administer the given company: its own
// company, a child of it, or anything for SuperAdmin.
func (s *companyService) canManage(actor *models.Profile, company *models.Company) bool {
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	if authz.Rank(actor.Role) < authz.Rank(models.RoleOwner) {
		return false
	}
	if actor.CompanyID == company.ID {
		return true
	}
	return company.ParentBrandID != nil && *company.ParentBrandID == actor.CompanyID
}

func (s *companyService) getLive(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if cached, err := s.cache.GetCompany(ctx, id); err == nil && cached != nil {
		return cached, nil
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	if err := s.cache.SetCompany(ctx, company, 5*time.Minute); err != nil {
		s.logger.Debug("company cache write failed", zap.Error(err))
	}
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Company, error) {
	company, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, company) && actor.CompanyID != company.ID {
		return nil, ErrPermissionDenied
	}
	return company, nil
}

func (s *companyService) Update(ctx context.Context, actor *models.Profile, req *UpdateCompanyRequest) error {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return err
	}
	company, err := s.getLive(ctx, req.ID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, company) {
		return ErrPermissionDenied
	}

	company.Name = req.Name
	company.MaxUsers = req.MaxUsers
	if err := s.companies.Update(ctx, company); err != nil {
		return err
	}
	return s.cache.DeleteCompany(ctx, company.ID)
}

func (s *companyService) AssignPrograms(ctx context.Context, actor *models.Profile, companyID uuid.UUID, programIDs []uuid.UUID) error {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, company) {
		return ErrPermissionDenied
	}

	ok, err := s.programs.ExistAll(ctx, programIDs)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("one or more programs do not exist")
	}

	company.AssignedProgramIDs = programIDs
	if err := s.companies.Update(ctx, company); err != nil {
		return err
	}
	return s.cache.DeleteCompany(ctx, company.ID)
}

func (s *companyService) SoftDelete(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	company, err := s.getLive(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, company) {
		return ErrPermissionDenied
	}
	if actor.CompanyID == id && actor.Role != models.RoleSuperAdmin {
		return errors.New("cannot delete your own company")
	}

	// A parent with live children cannot be removed; the children would
	// dangle with a deleted parent reference.
	children, err := s.companies.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("company has %d active child brands", len(children))
	}

	if err := s.companies.SoftDelete(ctx, id); err != nil {
		return err
	}
	return s.cache.DeleteCompany(ctx, id)
}

func (s *companyService) ListChildren(ctx context.Context, actor *models.Profile, parentBrandID uuid.UUID) ([]*models.Company, error) {
	if actor.Role != models.RoleSuperAdmin && actor.CompanyID != parentBrandID {
		return nil, ErrPermissionDenied
	}
	return s.companies.ListChildren(ctx, parentBrandID)
}

func (s *companyService) List(ctx context.Context, actor *models.Profile, limit, offset int) ([]*models.Company, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, ErrPermissionDenied
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.companies.List(ctx, limit, offset)
}

func (s *companyService) UploadLogo(ctx context.Context, actor *models.Profile, companyID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return "", err
	}
	if !s.canManage(actor, company) {
		return "", ErrPermissionDenied
	}

	objectKey := fmt.Sprintf("logos/%s", companyID)
	if err := s.assets.UploadLogo(ctx, objectKey, reader, size, contentType); err != nil {
		return "", err
	}

	company.LogoObjectKey = &objectKey
	if err := s.companies.Update(ctx, company); err != nil {
		return "", err
	}
	if err := s.cache.DeleteCompany(ctx, companyID); err != nil {
		s.logger.Debug("company cache invalidation failed", zap.Error(err))
	}
	return objectKey, nil
}
