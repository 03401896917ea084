package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"trainhub/internal/caching"
	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/services"
)

// Public signups per source IP per window.
const (
	signupRateLimit  = 5
	signupRateWindow = time.Hour
)

// AuthHandlers handles signup, login and token refresh
type AuthHandlers struct {
	saga    *services.Provisioner
	auth    services.AuthService
	cache   caching.CacheService
	actors  *ActorLoader
	logger  *zap.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(saga *services.Provisioner, auth services.AuthService, cache caching.CacheService, actors *ActorLoader, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		saga:   saga,
		auth:   auth,
		cache:  cache,
		actors: actors,
		logger: logger,
	}
}

// SignupRequest represents the public self-serve signup payload
type SignupRequest struct {
	CustomerName       string      `json:"customer_name" validate:"required"`
	TenantName         string      `json:"tenant_name" validate:"required"`
	Email              string      `json:"email" validate:"required,email"`
	Password           string      `json:"password" validate:"required,min=8"`
	PaymentAmountCents int64       `json:"payment_amount_cents"`
	Currency           string      `json:"currency"`
	ProgramIDs         []uuid.UUID `json:"program_ids"`
	TrialDurationDays  int         `json:"trial_duration_days"`
}

// Signup provisions a new tenant through the full saga: payment, company,
// default location, identity, admin profile.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	rateKey := fmt.Sprintf("signup:%s", c.RealIP())
	limited, err := h.cache.IsRateLimited(ctx, rateKey, signupRateLimit)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	}
	if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many signup attempts, try again later")
	}

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.cache.IncrementRateLimit(ctx, rateKey, signupRateWindow); err != nil {
		h.logger.Warn("rate limit increment failed", zap.Error(err))
	}

	result := h.saga.Provision(ctx, &services.ProvisionInput{
		CustomerName:       req.CustomerName,
		TenantName:         req.TenantName,
		AdminEmail:         req.Email,
		Password:           req.Password,
		PaymentAmountCents: req.PaymentAmountCents,
		Currency:           req.Currency,
		ProgramIDs:         req.ProgramIDs,
		TrialDurationDays:  req.TrialDurationDays,
	})
	return c.JSON(provisionStatus(result), result)
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	Profile *models.Profile `json:"profile"`
}

// Login authenticates a profile with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	tokens, profile, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return common.SendServerError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, Profile: profile})
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	tokens, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the caller's refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}
	if err := h.auth.Logout(ctx, req.RefreshToken); err != nil {
		return common.SendServerError(c, "Failed to revoke token")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// ProviderLogin exchanges a provider ID token, already verified by the JWKS
// middleware, for platform tokens. The identity must be bound to a profile.
func (h *AuthHandlers) ProviderLogin(c echo.Context) error {
	identityID, ok := c.Get("identity_id").(string)
	if !ok || identityID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing provider identity")
	}

	tokens, profile, err := h.auth.LoginWithIdentity(c.Request().Context(), identityID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "No profile bound to this identity")
		}
		return common.SendServerError(c, "Login failed")
	}
	return c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, Profile: profile})
}

// Me returns the acting profile
func (h *AuthHandlers) Me(c echo.Context) error {
	actor, err := h.actors.actor(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}
