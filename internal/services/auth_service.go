package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trainhub/internal/caching"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService issues platform tokens for profiles that authenticate with
// email and password. Refresh tokens are opaque and live in Redis; losing
// Redis logs everyone out, which is acceptable.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, *models.Profile, error)
	// LoginWithIdentity issues platform tokens for a provider identity that
	// has already been verified against the provider's JWKS.
	LoginWithIdentity(ctx context.Context, identityID string) (*models.TokenResponse, *models.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	profiles  repositories.ProfileRepository
	cache     caching.CacheService
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAuthService(profiles repositories.ProfileRepository, cache caching.CacheService, jwtSecret string, logger *zap.Logger) AuthService {
	return &authService{
		profiles:  profiles,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (s *authService) issueTokens(ctx context.Context, profile *models.Profile) (*models.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"profile_id": profile.ID.String(),
		"company_id": profile.CompanyID.String(),
		"role":       string(profile.Role),
		"iat":        now.Unix(),
		"exp":        now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.cache.SetSession(ctx, refresh, profile.ID.String(), refreshTokenTTL); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  signed,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTokenTTL.Seconds()),
		RefreshToken: refresh,
		ProfileID:    profile.ID.String(),
		CompanyID:    profile.CompanyID.String(),
		Role:         profile.Role,
		IssuedAt:     now,
	}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, *models.Profile, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !profile.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("profile logged in",
		zap.String("profile_id", profile.ID.String()),
		zap.String("company_id", profile.CompanyID.String()))
	return tokens, profile, nil
}

func (s *authService) LoginWithIdentity(ctx context.Context, identityID string) (*models.TokenResponse, *models.Profile, error) {
	profile, err := s.profiles.GetByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !profile.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	return tokens, profile, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	profileIDStr, err := s.cache.GetSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, caching.ErrCacheMiss) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	profileID, err := uuid.Parse(profileIDStr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Rotate: the old refresh token dies with this exchange.
	if err := s.cache.DeleteSession(ctx, refreshToken); err != nil {
		s.logger.Warn("failed to revoke refresh token", zap.Error(err))
	}
	return s.issueTokens(ctx, profile)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.cache.DeleteSession(ctx, refreshToken)
}
