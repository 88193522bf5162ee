package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("bad"), CodeValidation, http.StatusBadRequest},
		{Unauthorized("who", nil), CodeUnauthorized, http.StatusUnauthorized},
		{Forbidden("no", nil), CodeForbidden, http.StatusForbidden},
		{NotFound("Message", nil), CodeNotFound, http.StatusNotFound},
		{Conflict("dup"), CodeConflict, http.StatusConflict},
		{TooManyRequests("slow down"), CodeTooManyRequests, http.StatusTooManyRequests},
		{Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.Status)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	cause := stderrors.New("rpc error")
	wrapped := fmt.Errorf("load room: %w", NotFound("Chat room", cause))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, Is(wrapped, CodeForbidden))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "Chat room not found", NotFound("Chat room", nil).Message)
}
