package sync

import "time"

const (
	RecordCreated = "record.created"
	RecordUpdated = "record.updated"
	RecordDeleted = "record.deleted"
)

// RecordEvent is pushed to every connected client after a committed change.
type RecordEvent struct {
	Type          string    `json:"type"`
	RecordID      int64     `json:"record_id"`
	ExternalID    int64     `json:"external_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	ChaptersTotal *int      `json:"chapters,omitempty"`
	ChaptersRead  int       `json:"chapters_read,omitempty"`
	At            time.Time `json:"at"`
}
