package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/timetable"
)

// TimetableService is the calendar view surface the handlers depend on.
type TimetableService interface {
	Week(ctx context.Context, roomID, userID string, anchor time.Time) (*timetable.WeekView, error)
	Month(ctx context.Context, roomID, userID string, anchor time.Time, previewLimit int) (*timetable.MonthView, error)
}

const (
	defaultDayStart = "09:00"
	defaultDayEnd   = "18:00"
)

// timetableHandler serves week and month calendar views.
type timetableHandler struct {
	svc      TimetableService
	loc      *time.Location
	dayStart string
	dayEnd   string
}

// newTimetableHandler builds the handler. dayStart/dayEnd are HH:MM grid
// bounds echoed in week views; malformed or inverted bounds fall back to the
// 09:00-18:00 default.
func newTimetableHandler(svc TimetableService, loc *time.Location, dayStart, dayEnd string) *timetableHandler {
	start, errS := time.Parse("15:04", dayStart)
	end, errE := time.Parse("15:04", dayEnd)
	if errS != nil || errE != nil || !end.After(start) {
		dayStart, dayEnd = defaultDayStart, defaultDayEnd
	}
	if loc == nil {
		loc, _ = time.LoadLocation(timetable.DefaultTimezone)
	}
	return &timetableHandler{svc: svc, loc: loc, dayStart: dayStart, dayEnd: dayEnd}
}

type weekResponse struct {
	*timetable.WeekView
	DayStart string `json:"day_start"`
	DayEnd   string `json:"day_end"`
}

// View handles GET /api/timetable?view=week|month.
func (h *timetableHandler) View(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		roomID = DefaultRoomID
	}

	switch r.URL.Query().Get("view") {
	case "week":
		h.week(w, r, roomID, u.ID)
	case "month":
		h.month(w, r, roomID, u.ID)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "view must be week or month")
	}
}

func (h *timetableHandler) week(w http.ResponseWriter, r *http.Request, roomID, userID string) {
	raw := r.URL.Query().Get("anchor_date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "anchor_date is required")
		return
	}
	anchor, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "anchor_date must be YYYY-MM-DD")
		return
	}

	view, err := h.svc.Week(r.Context(), roomID, userID, anchor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weekResponse{WeekView: view, DayStart: h.dayStart, DayEnd: h.dayEnd})
}

func (h *timetableHandler) month(w http.ResponseWriter, r *http.Request, roomID, userID string) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "month is required")
		return
	}
	anchor, err := time.ParseInLocation("2006-01", raw, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "month must be YYYY-MM")
		return
	}

	previewLimit := timetable.DefaultPreviewLimit
	if v := r.URL.Query().Get("preview_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "preview_limit must be an integer")
			return
		}
		previewLimit = n
	}

	view, err := h.svc.Month(r.Context(), roomID, userID, anchor, previewLimit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
