package records

import (
	"fmt"
	"strings"

	"mangashelf/internal/apperr"
	"mangashelf/pkg/models"
)

// Validate checks a progress pair. Both counts must be non-negative; when the
// total is known the read count may not exceed it. An unknown total (nil)
// accepts any non-negative read count.
func Validate(total *int, read int) error {
	if read < 0 {
		return fmt.Errorf("chapters_read must be >= 0: %w", apperr.ErrInvalidInput)
	}
	if total == nil {
		return nil
	}
	if *total < 0 {
		return fmt.Errorf("chapters must be >= 0: %w", apperr.ErrInvalidInput)
	}
	if read > *total {
		return fmt.Errorf("%d read of %d: %w", read, *total, apperr.ErrInvalidProgress)
	}
	return nil
}

// ValidateRecord checks a record payload before it is inserted.
func ValidateRecord(m models.MangaRecord) error {
	if m.ExternalID <= 0 {
		return fmt.Errorf("external_id must be > 0: %w", apperr.ErrInvalidInput)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name required: %w", apperr.ErrInvalidInput)
	}
	if m.Rank != nil && *m.Rank < 0 {
		return fmt.Errorf("rank must be >= 0: %w", apperr.ErrInvalidInput)
	}
	if m.Popularity != nil && *m.Popularity < 0 {
		return fmt.Errorf("popularity must be >= 0: %w", apperr.ErrInvalidInput)
	}
	return Validate(m.ChaptersTotal, m.ChaptersRead)
}
