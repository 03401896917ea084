package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

type AuthServiceTestSuite struct {
	suite.Suite
	profiles *MockProfileRepository
	cache    *MockCacheService
	service  AuthService

	profile *models.Profile
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.profiles = &MockProfileRepository{}
	suite.cache = &MockCacheService{}
	suite.service = NewAuthService(suite.profiles, suite.cache, "test-secret", zap.NewNop())

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	suite.profile = &models.Profile{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        "owner@peak.example",
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
		IsActive:     true,
	}
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.profiles.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	suite.profiles.On("GetByEmail", ctx, suite.profile.Email).Return(suite.profile, nil)
	suite.cache.On("SetSession", ctx, mock.AnythingOfType("string"), suite.profile.ID.String(), refreshTokenTTL).Return(nil)

	tokens, profile, err := suite.service.Login(ctx, suite.profile.Email, "correct-password")

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokens.AccessToken)
	assert.NotEmpty(suite.T(), tokens.RefreshToken)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)
	assert.Equal(suite.T(), suite.profile.ID, profile.ID)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	suite.profiles.On("GetByEmail", ctx, suite.profile.Email).Return(suite.profile, nil)

	_, _, err := suite.service.Login(ctx, suite.profile.Email, "wrong-password")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailMapsToInvalidCredentials() {
	ctx := context.Background()
	suite.profiles.On("GetByEmail", ctx, "nobody@peak.example").Return(nil, repositories.ErrNotFound)

	_, _, err := suite.service.Login(ctx, "nobody@peak.example", "whatever")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_DeactivatedProfileDenied() {
	ctx := context.Background()
	suite.profile.IsActive = false
	suite.profiles.On("GetByEmail", ctx, suite.profile.Email).Return(suite.profile, nil)

	_, _, err := suite.service.Login(ctx, suite.profile.Email, "correct-password")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestRefresh_RotatesToken() {
	ctx := context.Background()
	suite.cache.On("GetSession", ctx, "old-refresh").Return(suite.profile.ID.String(), nil)
	suite.profiles.On("GetByID", ctx, suite.profile.ID).Return(suite.profile, nil)
	suite.cache.On("DeleteSession", ctx, "old-refresh").Return(nil)
	suite.cache.On("SetSession", ctx, mock.AnythingOfType("string"), suite.profile.ID.String(), refreshTokenTTL).Return(nil)

	tokens, err := suite.service.Refresh(ctx, "old-refresh")

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), "old-refresh", tokens.RefreshToken)
	suite.cache.AssertCalled(suite.T(), "DeleteSession", ctx, "old-refresh")
}

func (suite *AuthServiceTestSuite) TestLoginWithIdentity_UnboundIdentityDenied() {
	ctx := context.Background()
	suite.profiles.On("GetByIdentityID", ctx, "identity-x").Return(nil, repositories.ErrNotFound)

	_, _, err := suite.service.LoginWithIdentity(ctx, "identity-x")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}
