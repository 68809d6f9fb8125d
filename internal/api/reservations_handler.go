package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/domain"
	"github.com/roomlab/roombook/internal/reservation"
)

// DefaultRoomID is used when a create request omits the room.
const DefaultRoomID = "A"

// ReservationService is the booking surface the handlers depend on.
type ReservationService interface {
	Create(ctx context.Context, ownerID string, in reservation.CreateInput) (*reservation.CreateResult, error)
	Get(ctx context.Context, reservationID, userID string) (*reservation.DetailResult, error)
	Update(ctx context.Context, reservationID, userID string, in reservation.UpdateInput) (*reservation.DetailResult, error)
	Delete(ctx context.Context, reservationID, userID string) error
}

// BookingMetrics records booking outcomes; a nil value disables recording.
type BookingMetrics interface {
	IncReservationCreated()
	IncReservationConflict()
	IncReservationDeleted()
}

// reservationsHandler groups reservation HTTP handlers.
type reservationsHandler struct {
	svc     ReservationService
	metrics BookingMetrics
	audit   AuditRecorder
}

func newReservationsHandler(svc ReservationService, m BookingMetrics, rec AuditRecorder) *reservationsHandler {
	return &reservationsHandler{svc: svc, metrics: m, audit: rec}
}

type roomView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createdByView struct {
	Name string `json:"name"`
}

type reservationSummary struct {
	ID        string    `json:"id"`
	Room      roomView  `json:"room"`
	Title     string    `json:"title"`
	Purpose   *string   `json:"purpose"`
	AgendaURL *string   `json:"agenda_url"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	CreatedAt time.Time `json:"created_at"`
}

type reservationDetail struct {
	ID          string                `json:"id"`
	Room        roomView              `json:"room"`
	Title       string                `json:"title"`
	Purpose     *string               `json:"purpose"`
	AgendaURL   *string               `json:"agenda_url"`
	StartAt     time.Time             `json:"start_at"`
	EndAt       time.Time             `json:"end_at"`
	Description *string               `json:"description"`
	CreatedBy   createdByView         `json:"created_by"`
	Attendees   []reservation.Attendee `json:"attendees"`
}

func toDetail(d *reservation.DetailResult) reservationDetail {
	return reservationDetail{
		ID:          d.ID,
		Room:        roomView{ID: d.RoomID, Name: d.RoomName},
		Title:       d.Title,
		Purpose:     d.Purpose,
		AgendaURL:   d.AgendaURL,
		StartAt:     d.StartAt,
		EndAt:       d.EndAt,
		Description: d.Description,
		CreatedBy:   createdByView{Name: d.CreatedByName},
		Attendees:   d.Attendees,
	}
}

// Create handles POST /api/reservations.
func (h *reservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var in reservation.CreateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "failed to parse request body")
		return
	}
	if in.RoomID == "" {
		in.RoomID = DefaultRoomID
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "title is required")
		return
	}

	res, err := h.svc.Create(r.Context(), u.ID, in)
	if err != nil {
		if de, ok := domain.AsError(err); ok && de.Code == domain.CodeConflict && h.metrics != nil {
			h.metrics.IncReservationConflict()
		}
		writeDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncReservationCreated()
	}
	auditLog(h.audit, r, "reservation.create", "reservation", res.ID, "room_id", res.RoomID)

	writeJSON(w, http.StatusCreated, reservationSummary{
		ID:        res.ID,
		Room:      roomView{ID: res.RoomID, Name: res.RoomName},
		Title:     res.Title,
		Purpose:   res.Purpose,
		AgendaURL: res.AgendaURL,
		StartAt:   res.StartAt,
		EndAt:     res.EndAt,
		CreatedAt: res.CreatedAt,
	})
}

// Get handles GET /api/reservations/{id}.
func (h *reservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), u.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetail(d))
}

// Update handles PATCH /api/reservations/{id}.
func (h *reservationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var in reservation.UpdateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "failed to parse request body")
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.svc.Update(r.Context(), id, u.ID, in)
	if err != nil {
		if de, ok := domain.AsError(err); ok && de.Code == domain.CodeConflict && h.metrics != nil {
			h.metrics.IncReservationConflict()
		}
		writeDomainError(w, r, err)
		return
	}

	auditLog(h.audit, r, "reservation.update", "reservation", id)
	writeJSON(w, http.StatusOK, toDetail(d))
}

// Delete handles DELETE /api/reservations/{id}.
func (h *reservationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id, u.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncReservationDeleted()
	}
	auditLog(h.audit, r, "reservation.delete", "reservation", id)
	w.WriteHeader(http.StatusNoContent)
}
