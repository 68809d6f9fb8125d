package reservation

import "time"

// Timetable is a concrete room+interval slot, the atomic unit of conflict
// checking. Slots are immutable once created and unique per
// (room_id, start_at, end_at) triple.
type Timetable struct {
	ID        string
	RoomID    string
	StartAt   time.Time
	EndAt     time.Time
	UpdatedAt time.Time
}

// Reservation is a booking owned by a user, pointing at exactly one slot.
type Reservation struct {
	ID          string
	TimetableID string
	UserID      string
	Title       string
	Purpose     *string
	AgendaURL   *string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendee is a resolved attendee of a reservation.
type Attendee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Detail is a reservation joined with its slot and creator display name,
// scoped to the owning user.
type Detail struct {
	Reservation Reservation
	Timetable   Timetable
	CreatorName string
}

// WeekItem is one reservation row of a week timetable view.
type WeekItem struct {
	ID            string
	Title         string
	StartAt       time.Time
	EndAt         time.Time
	CreatedByName string
}

// MonthRow is one reservation start of a month timetable view.
type MonthRow struct {
	ID      string
	Title   string
	StartAt time.Time
}

// CreateInput holds the fields of a create request. StartAt and EndAt must
// carry an explicit offset; the RFC 3339 decode enforces that upstream.
type CreateInput struct {
	RoomID      string    `json:"room_id"`
	Title       string    `json:"title"`
	Purpose     *string   `json:"purpose"`
	AgendaURL   *string   `json:"agenda_url"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Description *string   `json:"description"`
	Attendees   []string  `json:"attendees"`
}

// UpdateInput holds a partial update. Every field is tri-state: absent fields
// keep their current value, null clears nullable fields, and a value
// replaces. Attendees provided in any form (even empty) replace the whole
// set; the room cannot be changed.
type UpdateInput struct {
	Title       Optional[string]    `json:"title"`
	Purpose     Optional[string]    `json:"purpose"`
	AgendaURL   Optional[string]    `json:"agenda_url"`
	StartAt     Optional[time.Time] `json:"start_at"`
	EndAt       Optional[time.Time] `json:"end_at"`
	Description Optional[string]    `json:"description"`
	Attendees   Optional[[]string]  `json:"attendees"`
}

// CreateResult is the summary view returned after a successful create.
type CreateResult struct {
	ID        string
	RoomID    string
	RoomName  string
	Title     string
	Purpose   *string
	AgendaURL *string
	StartAt   time.Time
	EndAt     time.Time
	CreatedAt time.Time
}

// DetailResult is the full detail view including creator and attendees.
type DetailResult struct {
	ID            string
	RoomID        string
	RoomName      string
	Title         string
	Purpose       *string
	AgendaURL     *string
	StartAt       time.Time
	EndAt         time.Time
	Description   *string
	CreatedByName string
	Attendees     []Attendee
}
