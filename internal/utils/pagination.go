package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Pagination holds the normalized page/limit pair parsed from a list
// request's query string.
type Pagination struct {
	Page  int
	Limit int
}

// GetPagination reads the "page" and "limit" query parameters and
// clamps them to sane bounds.  Missing or malformed values fall back to
// page 1 with 10 items.
func GetPagination(c echo.Context) Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// PageMeta is the pagination block attached to every list response.
type PageMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPageMeta computes the pagination block for a page of a result set
// with totalItems matches.  An empty result set yields zero total pages
// and no next/prev flags.
func NewPageMeta(p Pagination, totalItems int64) PageMeta {
	totalPages := int((totalItems + int64(p.Limit) - 1) / int64(p.Limit))
	return PageMeta{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.Page < totalPages,
		HasPrevPage:  p.Page > 1 && totalItems > 0,
	}
}
