package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"cryptoboost/internal/usecase/identity"

	"github.com/labstack/echo/v4"
)

const (
	identityKey    = "identity"
	HeaderCronKey  = "X-Cron-Key"
	tokenQueryName = "access_token"
)

// SessionResolver turns an access token into a live session.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*identity.Session, error)
}

// BearerToken reads "Authorization: Bearer <t>"; browsers cannot set headers
// on websocket upgrades, so ?access_token= is accepted as well.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.QueryParam(tokenQueryName))
}

// Auth rejects requests without a valid session and stores the caller identity.
func Auth(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			s, err := sessions.GetSession(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": identity.ErrInvalidSession.Error()})
			}
			c.Set(identityKey, s.User)
			return next(c)
		}
	}
}

// RequireAdmin must be mounted after Auth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		who, ok := CurrentIdentity(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		}
		if !who.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin only"})
		}
		return next(c)
	}
}

func CurrentIdentity(c echo.Context) (identity.Identity, bool) {
	who, ok := c.Get(identityKey).(identity.Identity)
	return who, ok && who.ID != ""
}

// CronKey guards endpoints hit by an external scheduler. An empty key disables them.
func CronKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			}
			got := c.Request().Header.Get(HeaderCronKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid cron key"})
			}
			return next(c)
		}
	}
}
