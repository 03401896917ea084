package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trainhub/internal/authz"
	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

// ProfileService manages staff within an existing tenant. Every mutation is
// gated by the authz predicates; the service raises ErrPermissionDenied when
// a predicate says no. The tenant's founding admin profile comes from the
// provisioning saga, not from here.
type ProfileService interface {
	Create(ctx context.Context, actor *models.Profile, req *CreateProfileRequest) (*models.Profile, error)
	GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, actor *models.Profile, req *UpdateProfileRequest) error
	ChangeRole(ctx context.Context, actor *models.Profile, targetID uuid.UUID, role models.Role) error
	SetActive(ctx context.Context, actor *models.Profile, targetID uuid.UUID, active bool) error
	SoftDelete(ctx context.Context, actor *models.Profile, targetID uuid.UUID) error
	ListByCompany(ctx context.Context, actor *models.Profile, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error)
}

type CreateProfileRequest struct {
	CompanyID           uuid.UUID   `json:"company_id"`
	Name                string      `json:"name" validate:"required"`
	Email               string      `json:"email" validate:"required,email"`
	Password            string      `json:"password" validate:"required,min=6"`
	Role                models.Role `json:"role"`
	AssignedLocationIDs []uuid.UUID `json:"assigned_location_ids"`
}

type UpdateProfileRequest struct {
	ID                  uuid.UUID
	Name                string      `json:"name"`
	AssignedLocationIDs []uuid.UUID `json:"assigned_location_ids"`
}

type profileService struct {
	profiles  repositories.ProfileRepository
	companies repositories.CompanyRepository
	locations repositories.LocationRepository
	identity  IdentityProvider
	logger    *zap.Logger
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	companies repositories.CompanyRepository,
	locations repositories.LocationRepository,
	identity IdentityProvider,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		profiles:  profiles,
		companies: companies,
		locations: locations,
		identity:  identity,
		logger:    logger,
	}
}

// parentOf resolves the parent_brand_id of a profile's company, which the
// pure authz predicates need to evaluate lineage.
func (s *profileService) parentOf(ctx context.Context, companyID uuid.UUID) (*uuid.UUID, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return company.ParentBrandID, nil
}

// validLocations checks that every assigned location belongs to the company.
func (s *profileService) validLocations(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	locations, err := s.locations.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	owned := make(map[uuid.UUID]bool, len(locations))
	for _, l := range locations {
		owned[l.ID] = true
	}
	for _, id := range ids {
		if !owned[id] {
			return fmt.Errorf("location %s does not belong to the company", id)
		}
	}
	return nil
}

func (s *profileService) Create(ctx context.Context, actor *models.Profile, req *CreateProfileRequest) (*models.Profile, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(req.Password, common.MinPasswordLenAdmin); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, errors.New("unknown role")
	}

	parentBrandID, err := s.parentOf(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	// Stand-in target: what the new profile would look like. The actor must
	// be able to act within that company and to grant the requested role.
	target := &models.Profile{ID: uuid.New(), CompanyID: req.CompanyID, Role: req.Role}
	if !authz.CanActOn(actor, target, parentBrandID) || !authz.CanAssignRole(actor, req.Role) {
		return nil, ErrPermissionDenied
	}

	if err := s.validLocations(ctx, req.CompanyID, req.AssignedLocationIDs); err != nil {
		return nil, err
	}

	identityID, err := s.identity.CreateIdentity(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:                  target.ID,
		CompanyID:           req.CompanyID,
		IdentityID:          identityID,
		Email:               req.Email,
		Name:                req.Name,
		PasswordHash:        string(hash),
		Role:                req.Role,
		AssignedLocationIDs: req.AssignedLocationIDs,
		IsActive:            true,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Keep store and provider consistent: undo the identity we just made.
		if derr := s.identity.DeleteIdentity(ctx, identityID); derr != nil {
			s.logger.Error("failed to delete identity after profile create failure",
				zap.String("identity_id", identityID), zap.Error(derr))
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Profile, error) {
	target, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID == target.ID {
		return target, nil
	}
	parentBrandID, err := s.parentOf(ctx, target.CompanyID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditProfile(actor, target, parentBrandID) {
		return nil, ErrPermissionDenied
	}
	return target, nil
}

func (s *profileService) Update(ctx context.Context, actor *models.Profile, req *UpdateProfileRequest) error {
	target, err := s.profiles.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	parentBrandID, err := s.parentOf(ctx, target.CompanyID)
	if err != nil {
		return err
	}
	// Non-status edits: self-edit is allowed, everything else needs CanActOn.
	if !authz.CanEditProfile(actor, target, parentBrandID) {
		return ErrPermissionDenied
	}

	if req.Name != "" {
		target.Name = req.Name
	}
	if req.AssignedLocationIDs != nil {
		if err := s.validLocations(ctx, target.CompanyID, req.AssignedLocationIDs); err != nil {
			return err
		}
		target.AssignedLocationIDs = req.AssignedLocationIDs
	}
	return s.profiles.Update(ctx, target)
}

func (s *profileService) ChangeRole(ctx context.Context, actor *models.Profile, targetID uuid.UUID, role models.Role) error {
	if !role.Valid() {
		return errors.New("unknown role")
	}
	target, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	parentBrandID, err := s.parentOf(ctx, target.CompanyID)
	if err != nil {
		return err
	}
	if !authz.CanActOn(actor, target, parentBrandID) || !authz.CanAssignRole(actor, role) {
		return ErrPermissionDenied
	}

	target.Role = role
	return s.profiles.Update(ctx, target)
}

func (s *profileService) SetActive(ctx context.Context, actor *models.Profile, targetID uuid.UUID, active bool) error {
	target, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	parentBrandID, err := s.parentOf(ctx, target.CompanyID)
	if err != nil {
		return err
	}
	// Status changes are administrative even against oneself, so this is
	// CanActOn, not CanEditProfile.
	if !authz.CanActOn(actor, target, parentBrandID) {
		return ErrPermissionDenied
	}

	target.IsActive = active
	return s.profiles.Update(ctx, target)
}

func (s *profileService) SoftDelete(ctx context.Context, actor *models.Profile, targetID uuid.UUID) error {
	target, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	parentBrandID, err := s.parentOf(ctx, target.CompanyID)
	if err != nil {
		return err
	}
	if !authz.CanActOn(actor, target, parentBrandID) {
		return ErrPermissionDenied
	}
	return s.profiles.SoftDelete(ctx, targetID)
}

func (s *profileService) ListByCompany(ctx context.Context, actor *models.Profile, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error) {
	parentBrandID, err := s.parentOf(ctx, companyID)
	if err != nil {
		return nil, err
	}
	inLineage := actor.CompanyID == companyID ||
		(parentBrandID != nil && *parentBrandID == actor.CompanyID)
	if actor.Role != models.RoleSuperAdmin && !inLineage {
		return nil, ErrPermissionDenied
	}

	limit, offset = common.ValidatePaginationParams(limit, offset)
	profiles, err := s.profiles.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}

	// Managers and staff only see colleagues within their location scope.
	scope := authz.LocationScope(actor)
	if scope.All {
		return profiles, nil
	}
	var visible []*models.Profile
	for _, p := range profiles {
		for _, loc := range p.AssignedLocationIDs {
			if scope.Contains(loc) {
				visible = append(visible, p)
				break
			}
		}
	}
	return visible, nil
}
