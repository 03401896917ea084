package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"trainhub/internal/authz"
	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

// LocationService manages a brand's training locations. The default location
// comes from the provisioning saga; everything after that goes through here.
type LocationService interface {
	Create(ctx context.Context, actor *models.Profile, companyID uuid.UUID, name string) (*models.Location, error)
	GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, actor *models.Profile, id uuid.UUID, name string) error
	Delete(ctx context.Context, actor *models.Profile, id uuid.UUID) error
	ListByCompany(ctx context.Context, actor *models.Profile, companyID uuid.UUID) ([]*models.Location, error)
}

type locationService struct {
	locations repositories.LocationRepository
	companies repositories.CompanyRepository
}

func NewLocationService(
	locations repositories.LocationRepository,
	companies repositories.CompanyRepository,
) LocationService {
	return &locationService{
		locations: locations,
		companies: companies,
	}
}

// canAdminister reports whether actor may mutate locations of the company:
// Admin and above within the lineage, or SuperAdmin anywhere.
func (s *locationService) canAdminister(ctx context.Context, actor *models.Profile, companyID uuid.UUID) (bool, error) {
	if actor.Role == models.RoleSuperAdmin {
		return true, nil
	}
	if authz.Rank(actor.Role) < authz.Rank(models.RoleOwner) {
		return false, nil
	}
	if actor.CompanyID == companyID {
		return true, nil
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return false, err
	}
	return company.ParentBrandID != nil && *company.ParentBrandID == actor.CompanyID, nil
}

func (s *locationService) Create(ctx context.Context, actor *models.Profile, companyID uuid.UUID, name string) (*models.Location, error) {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, err
	}
	ok, err := s.canAdminister(ctx, actor, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}

	location := &models.Location{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      name,
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *locationService) GetByID(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleSuperAdmin && actor.CompanyID != location.CompanyID {
		ok, err := s.canAdminister(ctx, actor, location.CompanyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPermissionDenied
		}
	}
	// Managers and staff only see locations inside their scope.
	scope := authz.LocationScope(actor)
	if !scope.All && !scope.Contains(location.ID) {
		return nil, ErrPermissionDenied
	}
	return location, nil
}

func (s *locationService) Update(ctx context.Context, actor *models.Profile, id uuid.UUID, name string) error {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return err
	}
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.canAdminister(ctx, actor, location.CompanyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	location.Name = name
	return s.locations.Update(ctx, location)
}

func (s *locationService) Delete(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.canAdminister(ctx, actor, location.CompanyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}

	// A company always keeps at least one location; profiles are scoped to
	// locations and must not be left pointing nowhere.
	remaining, err := s.locations.ListByCompany(ctx, location.CompanyID)
	if err != nil {
		return err
	}
	if len(remaining) <= 1 {
		return errors.New("cannot delete the last location of a company")
	}
	return s.locations.Delete(ctx, id)
}

func (s *locationService) ListByCompany(ctx context.Context, actor *models.Profile, companyID uuid.UUID) ([]*models.Location, error) {
	if actor.Role != models.RoleSuperAdmin && actor.CompanyID != companyID {
		ok, err := s.canAdminister(ctx, actor, companyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPermissionDenied
		}
	}
	locations, err := s.locations.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	scope := authz.LocationScope(actor)
	if scope.All {
		return locations, nil
	}
	var visible []*models.Location
	for _, l := range locations {
		if scope.Contains(l.ID) {
			visible = append(visible, l)
		}
	}
	return visible, nil
}
