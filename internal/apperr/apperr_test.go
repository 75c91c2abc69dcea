package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndStatusFollowWrapping(t *testing.T) {
	tests := []struct {
		err    error
		kind   string
		status int
	}{
		{fmt.Errorf("get record 7: %w", ErrNotFound), "not_found", http.StatusNotFound},
		{fmt.Errorf("create: %w", ErrConflict), "conflict", http.StatusConflict},
		{ErrInvalidProgress, "invalid_progress", http.StatusUnprocessableEntity},
		{fmt.Errorf("chapters_read: %w", ErrInvalidInput), "invalid_input", http.StatusBadRequest},
		{fmt.Errorf("search: %w", ErrCatalogUnavailable), "catalog_unavailable", http.StatusBadGateway},
		{ErrNoResults, "no_results", http.StatusNotFound},
		{errors.New("disk on fire"), "internal", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.kind, Kind(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(fmt.Errorf("x: %w", ErrConflict)))
	assert.False(t, Known(errors.New("boom")))
}
