package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"trainhub/internal/models"
)

type LocationServiceTestSuite struct {
	suite.Suite
	locations *MockLocationRepository
	companies *MockCompanyRepository
	service   LocationService

	companyID uuid.UUID
	owner     *models.Profile
}

func (suite *LocationServiceTestSuite) SetupTest() {
	suite.locations = &MockLocationRepository{}
	suite.companies = &MockCompanyRepository{}
	suite.service = NewLocationService(suite.locations, suite.companies)

	suite.companyID = uuid.New()
	suite.owner = &models.Profile{
		ID:        uuid.New(),
		CompanyID: suite.companyID,
		Role:      models.RoleOwner,
		IsActive:  true,
	}
}

func (suite *LocationServiceTestSuite) TearDownTest() {
	suite.locations.AssertExpectations(suite.T())
	suite.companies.AssertExpectations(suite.T())
}

func TestLocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LocationServiceTestSuite))
}

func (suite *LocationServiceTestSuite) TestCreate_OwnerCreatesInOwnCompany() {
	ctx := context.Background()
	suite.locations.On("Create", ctx, mock.AnythingOfType("*models.Location")).Return(nil)

	location, err := suite.service.Create(ctx, suite.owner, suite.companyID, "Westside Gym")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.companyID, location.CompanyID)
	assert.Equal(suite.T(), "Westside Gym", location.Name)
}

func (suite *LocationServiceTestSuite) TestCreate_ManagerIsDenied() {
	ctx := context.Background()
	manager := &models.Profile{ID: uuid.New(), CompanyID: suite.companyID, Role: models.RoleManager}

	_, err := suite.service.Create(ctx, manager, suite.companyID, "Westside Gym")
	assert.ErrorIs(suite.T(), err, ErrPermissionDenied)
	suite.locations.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *LocationServiceTestSuite) TestCreate_ParentBrandOwnerCreatesInChild() {
	ctx := context.Background()
	childID := uuid.New()
	suite.companies.On("GetByID", ctx, childID).
		Return(&models.Company{ID: childID, ParentBrandID: &suite.companyID}, nil)
	suite.locations.On("Create", ctx, mock.AnythingOfType("*models.Location")).Return(nil)

	_, err := suite.service.Create(ctx, suite.owner, childID, "Branch Studio")
	assert.NoError(suite.T(), err)
}

func (suite *LocationServiceTestSuite) TestCreate_ForeignCompanyIsDenied() {
	ctx := context.Background()
	foreignID := uuid.New()
	suite.companies.On("GetByID", ctx, foreignID).
		Return(&models.Company{ID: foreignID}, nil)

	_, err := suite.service.Create(ctx, suite.owner, foreignID, "Elsewhere")
	assert.ErrorIs(suite.T(), err, ErrPermissionDenied)
}

func (suite *LocationServiceTestSuite) TestGetByID_StaffOutsideScopeIsDenied() {
	ctx := context.Background()
	locationID := uuid.New()
	staff := &models.Profile{
		ID:                  uuid.New(),
		CompanyID:           suite.companyID,
		Role:                models.RoleStaff,
		AssignedLocationIDs: []uuid.UUID{uuid.New()},
	}
	suite.locations.On("GetByID", ctx, locationID).
		Return(&models.Location{ID: locationID, CompanyID: suite.companyID}, nil)

	_, err := suite.service.GetByID(ctx, staff, locationID)
	assert.ErrorIs(suite.T(), err, ErrPermissionDenied)
}

func (suite *LocationServiceTestSuite) TestDelete_RefusesLastLocation() {
	ctx := context.Background()
	locationID := uuid.New()
	suite.locations.On("GetByID", ctx, locationID).
		Return(&models.Location{ID: locationID, CompanyID: suite.companyID}, nil)
	suite.locations.On("ListByCompany", ctx, suite.companyID).
		Return([]*models.Location{{ID: locationID, CompanyID: suite.companyID}}, nil)

	err := suite.service.Delete(ctx, suite.owner, locationID)
	assert.Error(suite.T(), err)
	suite.locations.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *LocationServiceTestSuite) TestDelete_RemovesNonLastLocation() {
	ctx := context.Background()
	locationID := uuid.New()
	suite.locations.On("GetByID", ctx, locationID).
		Return(&models.Location{ID: locationID, CompanyID: suite.companyID}, nil)
	suite.locations.On("ListByCompany", ctx, suite.companyID).
		Return([]*models.Location{
			{ID: locationID, CompanyID: suite.companyID},
			{ID: uuid.New(), CompanyID: suite.companyID},
		}, nil)
	suite.locations.On("Delete", ctx, locationID).Return(nil)

	err := suite.service.Delete(ctx, suite.owner, locationID)
	assert.NoError(suite.T(), err)
}

func (suite *LocationServiceTestSuite) TestListByCompany_ManagerSeesOnlyAssigned() {
	ctx := context.Background()
	inScope := uuid.New()
	outOfScope := uuid.New()
	manager := &models.Profile{
		ID:                  uuid.New(),
		CompanyID:           suite.companyID,
		Role:                models.RoleManager,
		AssignedLocationIDs: []uuid.UUID{inScope},
	}
	suite.locations.On("ListByCompany", ctx, suite.companyID).
		Return([]*models.Location{
			{ID: inScope, CompanyID: suite.companyID},
			{ID: outOfScope, CompanyID: suite.companyID},
		}, nil)

	visible, err := suite.service.ListByCompany(ctx, manager, suite.companyID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), visible, 1)
	assert.Equal(suite.T(), inScope, visible[0].ID)
}
