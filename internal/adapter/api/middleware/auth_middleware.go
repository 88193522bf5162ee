package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"masterhub/internal/infrastructure/auth"
	"masterhub/pkg/errors"
)

type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// bearerToken reads the Authorization header. Websocket clients cannot set
// headers, so a token query parameter is accepted as well.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		token := c.QueryParam("token")
		return token, token != ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) identify(c echo.Context, token string) error {
	identity, err := m.verifier.Verify(c.Request().Context(), token)
	if err != nil {
		return err
	}

	c.Set("uid", identity.UID)
	c.Set("role", identity.Role)
	return nil
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok {
			if c.Request().Header.Get("Authorization") == "" {
				return errors.Unauthorized("Authorization header is required", nil)
			}
			return errors.Unauthorized("Invalid authorization format", nil)
		}

		if err := m.identify(c, token); err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		return next(c)
	}
}

// OptionalAuth sets the identity when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := bearerToken(c); ok {
			_ = m.identify(c, token)
		}
		return next(c)
	}
}

// UserID returns the authenticated uid or "" for anonymous requests.
func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
