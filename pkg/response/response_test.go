package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "masterhub/pkg/errors"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, fn(c))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorMapsAppError(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error {
		return Error(c, apperrors.Forbidden("Share link has expired", nil))
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "Share link has expired", body.Error.Message)
}

func TestErrorMapsValidationErrors(t *testing.T) {
	type input struct {
		Hours int `validate:"min=1,max=168"`
	}
	err := validator.New().Struct(input{Hours: 500})
	require.Error(t, err)

	rec, body := record(t, func(c echo.Context) error { return Error(c, err) })

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "hours must be at most 168", body.Error.Message)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error { return Error(c, stderrors.New("db exploded")) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "db exploded")
}

func TestHTTPErrorHandlerWrapsEchoErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	HTTPErrorHandler(echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required"), c)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestPaginated(t *testing.T) {
	_, body := record(t, func(c echo.Context) error {
		return Paginated(c, []string{"a", "b"}, 41, 1, 20)
	})

	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["totalPages"])
	assert.Equal(t, float64(41), data["total"])
}
