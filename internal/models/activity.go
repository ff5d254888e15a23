package models

import "time"

// ActivityEvent is one append-only log row recording a job transition of note.
type ActivityEvent struct {
	ID        int64          `json:"id" db:"id"`
	Type      string         `json:"type" db:"type"`
	Message   string         `json:"message" db:"message"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
