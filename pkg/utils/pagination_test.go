package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=10", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := GetPaginationParams(c)
	assert.Equal(t, PaginationParams{Page: 3, PageSize: 10, Offset: 20}, p)
}

func TestNewPaginationParamsClamps(t *testing.T) {
	assert.Equal(t, PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0}, NewPaginationParams(0, 0))
	assert.Equal(t, DefaultPageSize, NewPaginationParams(1, MaxPageSize+1).PageSize)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestWindow(t *testing.T) {
	start, end := Window(5, 2, 2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = Window(5, 10, 2)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	start, end = Window(5, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}
