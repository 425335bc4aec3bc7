package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paginationFor(t *testing.T, query string) Pagination {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return GetPagination(e.NewContext(req, rec))
}

func TestGetPagination(t *testing.T) {
	cases := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&limit=25", 3, 25},
		{"zero page", "page=0&limit=5", 1, 5},
		{"negative", "page=-2&limit=-1", 1, 10},
		{"garbage", "page=abc&limit=xyz", 1, 10},
		{"limit capped", "page=2&limit=500", 2, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := paginationFor(t, tc.query)
			assert.Equal(t, tc.page, p.Page)
			assert.Equal(t, tc.limit, p.Limit)
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(Pagination{Page: 2, Limit: 10}, 35)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 4, meta.TotalPages)
	assert.Equal(t, int64(35), meta.TotalItems)
	assert.Equal(t, 10, meta.ItemsPerPage)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestNewPageMetaEmpty(t *testing.T) {
	meta := NewPageMeta(Pagination{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPrevPage)
}

func TestNewPageMetaLastPage(t *testing.T) {
	meta := NewPageMeta(Pagination{Page: 4, Limit: 10}, 35)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestNewPageMetaExactFit(t *testing.T) {
	meta := NewPageMeta(Pagination{Page: 3, Limit: 10}, 30)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
}
