// Package timetable builds the calendar views of a room: one week of a
// user's bookings, or a month summarized per day.
package timetable

import (
	"context"
	"time"

	"github.com/roomlab/roombook/internal/reservation"
)

const (
	// DefaultTimezone anchors calendar arithmetic when no zone is configured.
	DefaultTimezone = "Asia/Seoul"

	DefaultPreviewLimit = 3
	MaxPreviewLimit     = 20
)

// ReservationLister is the read surface the view builders depend on.
type ReservationLister interface {
	ListOwnerWeek(ctx context.Context, roomID, userID string, weekStart, weekEnd time.Time) ([]reservation.WeekItem, error)
	ListOwnerMonthStarts(ctx context.Context, roomID, userID string, monthStart, monthEnd time.Time) ([]reservation.MonthRow, error)
}

// Service computes week and month views in a fixed location.
type Service struct {
	store ReservationLister
	loc   *time.Location
}

// NewService creates a view service operating in loc. A nil loc falls back
// to DefaultTimezone.
func NewService(store ReservationLister, loc *time.Location) *Service {
	if loc == nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return &Service{store: store, loc: loc}
}

// WeekView is seven consecutive days starting on a Monday.
type WeekView struct {
	RoomID    string        `json:"room_id"`
	WeekStart time.Time     `json:"week_start"`
	WeekEnd   time.Time     `json:"week_end"`
	Items     []WeekViewRow `json:"items"`
}

// WeekViewRow is one booking visible in a week view.
type WeekViewRow struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	CreatedByName string    `json:"created_by_name"`
}

// MonthView summarizes a calendar month per day.
type MonthView struct {
	RoomID string         `json:"room_id"`
	Month  string         `json:"month"`
	Days   []MonthViewDay `json:"days"`
}

// MonthViewDay is one day of a month view with a capped booking preview.
type MonthViewDay struct {
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	Preview []string `json:"preview"`
}

// Week returns userID's bookings in roomID for the week containing anchor.
// The anchor is snapped back to the most recent Monday in the service
// location, so any day of a week yields the same view.
func (s *Service) Week(ctx context.Context, roomID, userID string, anchor time.Time) (*WeekView, error) {
	local := anchor.In(s.loc)
	back := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-back, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 7)

	items, err := s.store.ListOwnerWeek(ctx, roomID, userID, start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]WeekViewRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, WeekViewRow{
			ID:            it.ID,
			Title:         it.Title,
			StartAt:       it.StartAt.In(s.loc),
			EndAt:         it.EndAt.In(s.loc),
			CreatedByName: it.CreatedByName,
		})
	}
	return &WeekView{RoomID: roomID, WeekStart: start, WeekEnd: end, Items: rows}, nil
}

// Month returns per-day booking counts for the month containing anchor, with
// up to previewLimit start times per day. previewLimit outside 1..20 falls
// back to the default of 3.
func (s *Service) Month(ctx context.Context, roomID, userID string, anchor time.Time, previewLimit int) (*MonthView, error) {
	if previewLimit < 1 || previewLimit > MaxPreviewLimit {
		previewLimit = DefaultPreviewLimit
	}

	local := anchor.In(s.loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, 0)

	rows, err := s.store.ListOwnerMonthStarts(ctx, roomID, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := map[string]*MonthViewDay{}
	var order []string
	for _, r := range rows {
		at := r.StartAt.In(s.loc)
		date := at.Format(time.DateOnly)
		day, ok := byDate[date]
		if !ok {
			day = &MonthViewDay{Date: date, Preview: []string{}}
			byDate[date] = day
			order = append(order, date)
		}
		day.Count++
		if len(day.Preview) < previewLimit {
			day.Preview = append(day.Preview, at.Format("15:04"))
		}
	}

	days := make([]MonthViewDay, 0, len(order))
	for _, date := range order {
		days = append(days, *byDate[date])
	}
	return &MonthView{RoomID: roomID, Month: start.Format("2006-01"), Days: days}, nil
}
