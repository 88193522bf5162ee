package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"masterhub/pkg/errors"
)

func currentUser(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

// limitOffset parses limit and offset query parameters, ignoring values
// that are not positive.
func limitOffset(c echo.Context, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if parsed, err := strconv.Atoi(c.QueryParam("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	if parsed, err := strconv.Atoi(c.QueryParam("offset")); err == nil && parsed >= 0 {
		offset = parsed
	}
	return limit, offset
}
