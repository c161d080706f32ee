package middleware

import (
	"net/http"
	"strings"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextUser   = "user"

	loggedOutValue = "loggedout"
)

// extractToken prefers the Authorization header, falls back to the "token"
// cookie. Logout writes the literal "loggedout" into the cookie, which
// counts as unauthenticated.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := c.Cookie("token")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth verifies the session token and checks the user still exists;
// a deleted account's tokens stop working immediately.
func RequireAuth(tokens *token.Manager, userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" || raw == loggedOutValue {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			user, err := userRepo.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
			}

			c.Set(ContextUserID, user.ID)
			c.Set(ContextRole, string(user.Role))
			c.Set(ContextUser, user)
			return next(c)
		}
	}
}

// RequireAdmin allows full admins always; limited admins only when they hold
// the named permission.
func RequireAdmin(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(ContextUser).(*model.User)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			switch user.Role {
			case model.RoleAdmin:
				return next(c)
			case model.RoleLimitedAdmin:
				if permission != "" && user.Permissions.Contains(permission) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ContextRole).(string)
	return role == string(model.RoleAdmin)
}
