package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"trainhub/internal/caching"
	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
	"trainhub/internal/services"
)

const actorCacheTTL = 2 * time.Minute

// ActorLoader resolves the acting profile for authenticated requests. Every
// protected handler needs the full profile because the authorization
// predicates work on profiles, not on raw claims.
type ActorLoader struct {
	profiles repositories.ProfileRepository
	cache    caching.CacheService
}

func NewActorLoader(profiles repositories.ProfileRepository, cache caching.CacheService) *ActorLoader {
	return &ActorLoader{profiles: profiles, cache: cache}
}

func (l *ActorLoader) actor(ctx context.Context) (*models.Profile, error) {
	profileID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if cached, err := l.cache.GetProfile(ctx, profileID); err == nil && cached != nil {
		return cached, nil
	}
	profile, err := l.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Acting profile not found")
	}
	if !profile.IsActive {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Profile is deactivated")
	}
	_ = l.cache.SetProfile(ctx, profile, actorCacheTTL)
	return profile, nil
}

// provisionStatus maps a saga outcome to an HTTP status.
func provisionStatus(result *services.ProvisionResult) int {
	if result.Success {
		return http.StatusCreated
	}
	switch result.Reason {
	case services.ErrKindValidation:
		return http.StatusBadRequest
	case services.ErrKindPermissionDenied:
		return http.StatusForbidden
	case services.ErrKindPayment:
		return http.StatusPaymentRequired
	case services.ErrKindIdentityCreation:
		if !result.Retryable {
			// Email collision is the one terminal identity failure.
			return http.StatusConflict
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// serviceError translates the common service-layer failures.
func serviceError(c echo.Context, err error, resource string) error {
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		return common.SendForbiddenError(c)
	case errors.Is(err, repositories.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	default:
		return common.SendClientError(c, err.Error())
	}
}
