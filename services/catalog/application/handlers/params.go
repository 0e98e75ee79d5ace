package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ItemsPath is the public base path of the item resource, used for Location headers.
const ItemsPath = "/api/catalog/items"

const (
	defaultPageSize  = 10
	defaultPageIndex = 0
)

var (
	errInvalidID        = errors.New("id must be a positive integer")
	errInvalidPageSize  = errors.New("pageSize must be a positive integer")
	errInvalidPageIndex = errors.New("pageIndex must be a non-negative integer")
)

// itemID reads the {id} path parameter. Only positive integers are accepted.
func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// pagination reads pageSize and pageIndex from the query string, falling back
// to 10 and 0 when a parameter is absent.
func pagination(r *http.Request) (pageIndex, pageSize int, err error) {
	q := r.URL.Query()

	pageSize = defaultPageSize
	if raw := q.Get("pageSize"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil || pageSize <= 0 {
			return 0, 0, errInvalidPageSize
		}
	}

	pageIndex = defaultPageIndex
	if raw := q.Get("pageIndex"); raw != "" {
		if pageIndex, err = strconv.Atoi(raw); err != nil || pageIndex < 0 {
			return 0, 0, errInvalidPageIndex
		}
	}
	return pageIndex, pageSize, nil
}
