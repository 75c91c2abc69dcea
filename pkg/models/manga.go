package models

import "time"

// MangaRecord is a saved manga entry with its reading progress.
//
// ChaptersTotal is nil when the catalog does not know the total yet
// (ongoing series). When it is set, ChaptersRead never exceeds it.
type MangaRecord struct {
	ID            int64     `json:"id"`
	ExternalID    int64     `json:"external_id"`
	Name          string    `json:"name"`
	CoverURL      string    `json:"cover_url"`
	ChaptersTotal *int      `json:"chapters"`
	ChaptersRead  int       `json:"chapters_read"`
	Type          string    `json:"type,omitempty"`
	Status        string    `json:"status,omitempty"`
	Score         *float64  `json:"score,omitempty"`
	Rank          *int      `json:"rank,omitempty"`
	Popularity    *int      `json:"popularity,omitempty"`
	StartDate     *Date     `json:"start_date,omitempty"`
	FinishDate    *Date     `json:"finish_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProgressUpdate carries a new (total, read) pair for a record.
type ProgressUpdate struct {
	ChaptersTotal *int
	ChaptersRead  int
	// TotalSet is false when only the read count is reported; the stored
	// total is kept in that case.
	TotalSet bool
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }
