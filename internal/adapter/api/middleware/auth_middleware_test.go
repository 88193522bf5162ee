package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterhub/internal/infrastructure/auth"
	"masterhub/pkg/errors"
)

func echoIdentity(c echo.Context) error {
	role, _ := c.Get("role").(string)
	return c.String(http.StatusOK, UserID(c)+"|"+role)
}

func TestAuthenticate(t *testing.T) {
	verifier := auth.NewJWTVerifier("middleware-secret")
	m := NewAuthMiddleware(verifier)
	token, err := verifier.Issue("master-1", "master", time.Hour)
	require.NoError(t, err)

	e := echo.New()

	cases := []struct {
		name   string
		header string
		query  string
		ok     bool
		msg    string
	}{
		{name: "bearer header", header: "Bearer " + token, ok: true},
		{name: "query token", query: "?token=" + token, ok: true},
		{name: "missing", msg: "Authorization header is required"},
		{name: "wrong scheme", header: "Basic " + token, msg: "Invalid authorization format"},
		{name: "bad token", header: "Bearer nope", msg: "Invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := m.Authenticate(echoIdentity)(c)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "master-1|master", rec.Body.String())
				return
			}

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusUnauthorized, appErr.Status)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
}

func TestOptionalAuthFallsThroughAnonymously(t *testing.T) {
	verifier := auth.NewJWTVerifier("middleware-secret")
	m := NewAuthMiddleware(verifier)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/share", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer expired-or-forged")
	rec := httptest.NewRecorder()

	require.NoError(t, m.OptionalAuth(echoIdentity)(e.NewContext(req, rec)))
	assert.Equal(t, "|", rec.Body.String())
}

func TestRateLimitPerIP(t *testing.T) {
	m := NewRateLimitMiddleware(1)
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		return m.Limit(ok)(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, call("10.0.0.1"))
	err := call("10.0.0.1")
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	assert.NoError(t, call("10.0.0.2"))
}
