package domain

import "time"

// ContentEntry is one key of the editable marketing copy. Public pages read
// these values; admins write them.
type ContentEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
