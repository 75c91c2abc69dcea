// Package apperr defines the error kinds surfaced by the record store and
// the catalog proxy, and how each kind maps onto an HTTP response.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidProgress    = errors.New("chapters read cannot exceed total chapters")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNoResults          = errors.New("no results")
)

var kinds = []struct {
	err    error
	name   string
	status int
}{
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrConflict, "conflict", http.StatusConflict},
	{ErrInvalidProgress, "invalid_progress", http.StatusUnprocessableEntity},
	{ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{ErrCatalogUnavailable, "catalog_unavailable", http.StatusBadGateway},
	{ErrNoResults, "no_results", http.StatusNotFound},
}

// Kind returns the short name of err's kind, or "internal" for anything
// outside the taxonomy.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Known reports whether err belongs to the taxonomy.
func Known(err error) bool {
	return Kind(err) != "internal"
}
