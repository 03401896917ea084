package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trainhub/internal/authz"
	"trainhub/internal/common"
	"trainhub/internal/models"
)

// RequireRole rejects requests whose acting role ranks below min. Finer
// per-target decisions still happen in the services via the authz
// predicates; this gate only trims obviously unauthorized traffic early.
func RequireRole(min models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if authz.Rank(role) < authz.Rank(min) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
