package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/models"
)

// PlatformClaims are the claims issued by our own login endpoint.
type PlatformClaims struct {
	ProfileID string `json:"profile_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTMiddleware validates platform tokens and loads the acting profile,
// company and role into the request context.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(PlatformClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*PlatformClaims)
			if !ok {
				return
			}

			profileID, err := uuid.Parse(claims.ProfileID)
			if err != nil {
				return
			}
			companyID, err := uuid.Parse(claims.CompanyID)
			if err != nil {
				return
			}
			role := models.Role(claims.Role)
			if !role.Valid() {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.ProfileIDKey, profileID)
			ctx = context.WithValue(ctx, common.CompanyIDKey, companyID)
			ctx = context.WithValue(ctx, common.RoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})
}
