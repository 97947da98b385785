package devapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const (
	ctxClaims = "claims"
	ctxRole   = "role"
)

// Auth validates the bearer token and injects its claims into context.
func Auth(svc *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := svc.Authenticate(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// The role is re-read on every request so role changes apply to
			// tokens issued earlier.
			user, err := svc.CurrentUser(c.Request().Context(), claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}

			c.Set(ctxClaims, claims)
			c.Set(ctxRole, user.Role)
			return next(c)
		}
	}
}

// RequirePermission rejects requests whose user lacks p. It must run after
// Auth.
func RequirePermission(p domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !permitted(c, p) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

func permitted(c echo.Context, p domain.Permission) bool {
	role, ok := c.Get(ctxRole).(domain.Role)
	return ok && p.Grants(role)
}

func claimsFrom(c echo.Context) (*Claims, error) {
	claims, _ := c.Get(ctxClaims).(*Claims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
