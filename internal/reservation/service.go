// Package reservation implements the booking core: slot resolution, conflict
// checking, and the reservation lifecycle.
package reservation

import (
	"context"
	"time"

	"github.com/roomlab/roombook/internal/domain"
	"github.com/roomlab/roombook/internal/ident"
	"github.com/roomlab/roombook/internal/user"
)

// Store is the persistence surface the lifecycle manager depends on. The
// pgx-backed PGStore implements it; tests substitute in-memory fakes.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error
	FindOrCreateTimetable(ctx context.Context, roomID string, startAt, endAt time.Time) (*Timetable, error)
	HasConflict(ctx context.Context, roomID string, startAt, endAt time.Time, excludeReservationID string) (bool, error)
	Insert(ctx context.Context, r *Reservation) error
	Update(ctx context.Context, r *Reservation) error
	FindOwnedDetail(ctx context.Context, reservationID, userID string) (*Detail, error)
	DeleteOwned(ctx context.Context, reservationID, userID string) (bool, error)
	ReplaceAttendees(ctx context.Context, reservationID string, userIDs []string) error
	ListAttendees(ctx context.Context, reservationID string) ([]Attendee, error)
}

// Directory is the user-directory surface used to re-verify owners and
// resolve attendee identifiers.
type Directory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	ResolveMany(ctx context.Context, identifiers []string) (map[string]string, error)
}

// RoomNamer resolves room ids to display names.
type RoomNamer interface {
	Name(roomID string) string
}

// Service orchestrates the reservation lifecycle. It is the sole writer of
// reservation, timetable, and attendee rows; checks run in dependency order
// and the first failure short-circuits before any write.
type Service struct {
	store Store
	users Directory
	rooms RoomNamer
}

// NewService creates a new reservation service.
func NewService(store Store, users Directory, rooms RoomNamer) *Service {
	return &Service{store: store, users: users, rooms: rooms}
}

// Create validates and books a new reservation for ownerID. The conflict
// check, slot resolution, and writes share one transaction.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*CreateResult, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.Unauthorized("login required")
	}

	if err := validateRange(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	attendeeIDs, err := s.resolveAttendees(ctx, in.Attendees)
	if err != nil {
		return nil, err
	}

	res := &Reservation{
		ID:          ident.New("rsv"),
		UserID:      ownerID,
		Title:       in.Title,
		Purpose:     in.Purpose,
		AgendaURL:   in.AgendaURL,
		Description: in.Description,
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		conflict, err := tx.HasConflict(ctx, in.RoomID, in.StartAt, in.EndAt, "")
		if err != nil {
			return err
		}
		if conflict {
			return domain.Conflict("the room is already reserved for that time")
		}

		slot, err := tx.FindOrCreateTimetable(ctx, in.RoomID, in.StartAt, in.EndAt)
		if err != nil {
			return err
		}
		res.TimetableID = slot.ID

		if err := tx.Insert(ctx, res); err != nil {
			return err
		}
		return tx.ReplaceAttendees(ctx, res.ID, attendeeIDs)
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		ID:        res.ID,
		RoomID:    in.RoomID,
		RoomName:  s.rooms.Name(in.RoomID),
		Title:     res.Title,
		Purpose:   res.Purpose,
		AgendaURL: res.AgendaURL,
		StartAt:   in.StartAt,
		EndAt:     in.EndAt,
		CreatedAt: res.CreatedAt,
	}, nil
}

// Get returns the detail view of a reservation owned by userID. An absent
// reservation and one owned by someone else are both NOT_FOUND.
func (s *Service) Get(ctx context.Context, reservationID, userID string) (*DetailResult, error) {
	d, err := s.store.FindOwnedDetail(ctx, reservationID, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("reservation not found")
	}

	attendees, err := s.store.ListAttendees(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return detailResult(d, d.Timetable.StartAt, d.Timetable.EndAt, attendees, s.rooms), nil
}

// Update applies a partial update to an owned reservation. Omitted fields
// keep their current value; the time range is re-validated and re-checked
// for conflicts (excluding the reservation's own slot) against the current
// room, and the reservation is re-pointed at the resolved slot.
func (s *Service) Update(ctx context.Context, reservationID, userID string, in UpdateInput) (*DetailResult, error) {
	var result *DetailResult
	err := s.store.InTx(ctx, func(tx Store) error {
		d, err := tx.FindOwnedDetail(ctx, reservationID, userID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFound("reservation not found")
		}

		res := d.Reservation
		if in.Title.Set {
			if !in.Title.Valid {
				return domain.InvalidArgument("title cannot be null")
			}
			res.Title = in.Title.Value
		}
		res.Purpose = mergeNullable(in.Purpose, res.Purpose)
		res.AgendaURL = mergeNullable(in.AgendaURL, res.AgendaURL)
		res.Description = mergeNullable(in.Description, res.Description)

		nextStart, err := mergeInstant(in.StartAt, d.Timetable.StartAt, "start_at")
		if err != nil {
			return err
		}
		nextEnd, err := mergeInstant(in.EndAt, d.Timetable.EndAt, "end_at")
		if err != nil {
			return err
		}
		if err := validateRange(nextStart, nextEnd); err != nil {
			return err
		}

		var attendeeIDs []string
		if in.Attendees.Set {
			attendeeIDs, err = s.resolveAttendees(ctx, in.Attendees.Value)
			if err != nil {
				return err
			}
		}

		conflict, err := tx.HasConflict(ctx, d.Timetable.RoomID, nextStart, nextEnd, res.ID)
		if err != nil {
			return err
		}
		if conflict {
			return domain.Conflict("the room is already reserved for that time")
		}

		slot, err := tx.FindOrCreateTimetable(ctx, d.Timetable.RoomID, nextStart, nextEnd)
		if err != nil {
			return err
		}
		res.TimetableID = slot.ID

		if err := tx.Update(ctx, &res); err != nil {
			return err
		}
		if in.Attendees.Set {
			if err := tx.ReplaceAttendees(ctx, res.ID, attendeeIDs); err != nil {
				return err
			}
		}

		attendees, err := tx.ListAttendees(ctx, res.ID)
		if err != nil {
			return err
		}
		result = detailResult(&Detail{
			Reservation: res,
			Timetable:   d.Timetable,
			CreatorName: d.CreatorName,
		}, nextStart, nextEnd, attendees, s.rooms)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an owned reservation, its slot, and its attendee links.
func (s *Service) Delete(ctx context.Context, reservationID, userID string) error {
	return s.store.InTx(ctx, func(tx Store) error {
		deleted, err := tx.DeleteOwned(ctx, reservationID, userID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("reservation not found")
		}
		return nil
	})
}

// resolveAttendees converts raw identifiers (ids or emails) into canonical
// user ids. Resolution is all-or-nothing: any unknown identifier fails the
// whole batch so partial attendee lists are never written.
func (s *Service) resolveAttendees(ctx context.Context, raw []string) ([]string, error) {
	cleaned := user.NormalizeIdentifiers(raw)
	if len(cleaned) == 0 {
		return nil, nil
	}

	resolved, err := s.users.ResolveMany(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cleaned))
	for _, identifier := range cleaned {
		id, ok := resolved[identifier]
		if !ok {
			return nil, domain.InvalidArgument("attendees contains an unknown user")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validateRange(startAt, endAt time.Time) error {
	if startAt.IsZero() || endAt.IsZero() {
		return domain.InvalidArgument("start_at and end_at are required")
	}
	if !endAt.After(startAt) {
		return domain.InvalidArgument("end_at must be after start_at")
	}
	return nil
}

// mergeNullable applies tri-state semantics to a nullable text field:
// absent keeps current, null clears, a value replaces.
func mergeNullable(o Optional[string], current *string) *string {
	if !o.Set {
		return current
	}
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// mergeInstant applies tri-state semantics to a required timestamp field;
// explicit null is rejected since the range cannot be cleared.
func mergeInstant(o Optional[time.Time], current time.Time, field string) (time.Time, error) {
	if !o.Set {
		return current, nil
	}
	if !o.Valid {
		return time.Time{}, domain.InvalidArgument(field + " cannot be null")
	}
	return o.Value, nil
}

func detailResult(d *Detail, startAt, endAt time.Time, attendees []Attendee, rooms RoomNamer) *DetailResult {
	if attendees == nil {
		attendees = []Attendee{}
	}
	return &DetailResult{
		ID:            d.Reservation.ID,
		RoomID:        d.Timetable.RoomID,
		RoomName:      rooms.Name(d.Timetable.RoomID),
		Title:         d.Reservation.Title,
		Purpose:       d.Reservation.Purpose,
		AgendaURL:     d.Reservation.AgendaURL,
		StartAt:       startAt,
		EndAt:         endAt,
		Description:   d.Reservation.Description,
		CreatedByName: d.CreatorName,
		Attendees:     attendees,
	}
}
