package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"trainhub/internal/models"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	args := m.Called(ctx, company, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCompany(ctx context.Context, companyID uuid.UUID) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockCacheService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockCacheService) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	args := m.Called(ctx, profile, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *MockCacheService) SetSession(ctx context.Context, sessionID, profileID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, profileID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	args := m.Called(ctx, key, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
