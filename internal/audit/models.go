package audit

import "time"

// Event is a single audit trail entry describing who did what to which
// resource. Events are buffered in memory and written to the database in
// batches by the Collector.
type Event struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserEmail    string    `json:"user_email"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	IP           string    `json:"ip"`
	RequestID    string    `json:"request_id"`
	At           time.Time `json:"at"`
}
