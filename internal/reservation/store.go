package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomlab/roombook/internal/ident"
)

// querier is the subset of pgx operations shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore provides database operations for reservations, timetable slots,
// and attendee links.
type PGStore struct {
	pool *pgxpool.Pool
	db   querier
}

// NewStore creates a new PGStore backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

// InTx runs fn against a transaction-backed store. The transaction commits
// when fn returns nil and rolls back otherwise, so a failing check leaves no
// partial write. Nested calls reuse the surrounding transaction.
func (s *PGStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&PGStore{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const timetableColumns = `id, room_id, start_at, end_at, updated_at`

func scanTimetable(row pgx.Row) (*Timetable, error) {
	t := &Timetable{}
	err := row.Scan(&t.ID, &t.RoomID, &t.StartAt, &t.EndAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreateTimetable resolves the canonical slot for an exact
// (room, start, end) triple, creating one if absent. The unique constraint on
// the triple is the backstop should two transactions race past the lookup.
func (s *PGStore) FindOrCreateTimetable(ctx context.Context, roomID string, startAt, endAt time.Time) (*Timetable, error) {
	t, err := scanTimetable(s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM timetables
		 WHERE room_id = $1 AND start_at = $2 AND end_at = $3`, timetableColumns),
		roomID, startAt, endAt,
	))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("finding timetable: %w", err)
	}

	t, err = scanTimetable(s.db.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO timetables (id, room_id, start_at, end_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING %s`, timetableColumns),
		ident.New("ttb"), roomID, startAt, endAt,
	))
	if err != nil {
		return nil, fmt.Errorf("creating timetable: %w", err)
	}
	return t, nil
}

// HasConflict reports whether any reserved slot in the room overlaps the
// candidate interval. Overlap is strict (existing.start < candidate.end AND
// existing.end > candidate.start), so touching endpoints never conflict.
// A non-empty excludeReservationID removes that reservation's own slot from
// consideration.
func (s *PGStore) HasConflict(ctx context.Context, roomID string, startAt, endAt time.Time, excludeReservationID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM reservations r
		   JOIN timetables t ON t.id = r.timetable_id
		   WHERE t.room_id = $1
		     AND t.start_at < $3
		     AND t.end_at > $2
		     AND ($4 = '' OR r.id <> $4)
		 )`,
		roomID, startAt, endAt, excludeReservationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking conflict: %w", err)
	}
	return exists, nil
}

// Insert adds a new reservation row and fills in its generated timestamps.
func (s *PGStore) Insert(ctx context.Context, r *Reservation) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO reservations (id, timetable_id, user_id, title, purpose, agenda_url, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		r.ID, r.TimetableID, r.UserID, r.Title, r.Purpose, r.AgendaURL, r.Description,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a reservation, including its slot
// pointer, and refreshes updated_at.
func (s *PGStore) Update(ctx context.Context, r *Reservation) error {
	err := s.db.QueryRow(ctx,
		`UPDATE reservations
		 SET timetable_id = $2, title = $3, purpose = $4, agenda_url = $5,
		     description = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		r.ID, r.TimetableID, r.Title, r.Purpose, r.AgendaURL, r.Description,
	).Scan(&r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating reservation: %w", err)
	}
	return nil
}

// FindOwnedDetail retrieves a reservation with its slot and creator name,
// scoped to the owning user. Returns (nil, nil) when the reservation does
// not exist or belongs to someone else; the two cases are indistinguishable
// so other users' bookings do not leak their existence.
func (s *PGStore) FindOwnedDetail(ctx context.Context, reservationID, userID string) (*Detail, error) {
	d := &Detail{}
	err := s.db.QueryRow(ctx,
		`SELECT r.id, r.timetable_id, r.user_id, r.title, r.purpose, r.agenda_url,
		        r.description, r.created_at, r.updated_at,
		        t.id, t.room_id, t.start_at, t.end_at, t.updated_at,
		        u.name
		 FROM reservations r
		 JOIN timetables t ON t.id = r.timetable_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1 AND r.user_id = $2`,
		reservationID, userID,
	).Scan(
		&d.Reservation.ID, &d.Reservation.TimetableID, &d.Reservation.UserID,
		&d.Reservation.Title, &d.Reservation.Purpose, &d.Reservation.AgendaURL,
		&d.Reservation.Description, &d.Reservation.CreatedAt, &d.Reservation.UpdatedAt,
		&d.Timetable.ID, &d.Timetable.RoomID, &d.Timetable.StartAt,
		&d.Timetable.EndAt, &d.Timetable.UpdatedAt,
		&d.CreatorName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding reservation detail: %w", err)
	}
	return d, nil
}

// DeleteOwned removes a reservation scoped to its owner, together with its
// slot. Attendee links go with the reservation via the foreign key cascade.
// Returns false when nothing matched.
func (s *PGStore) DeleteOwned(ctx context.Context, reservationID, userID string) (bool, error) {
	var timetableID string
	err := s.db.QueryRow(ctx,
		`DELETE FROM reservations WHERE id = $1 AND user_id = $2 RETURNING timetable_id`,
		reservationID, userID,
	).Scan(&timetableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting reservation: %w", err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM timetables WHERE id = $1`, timetableID); err != nil {
		return false, fmt.Errorf("deleting timetable: %w", err)
	}
	return true, nil
}

// ReplaceAttendees swaps the whole attendee set of a reservation: existing
// links are deleted, then the given user ids are inserted in order.
func (s *PGStore) ReplaceAttendees(ctx context.Context, reservationID string, userIDs []string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM reservation_attendees WHERE reservation_id = $1`, reservationID,
	); err != nil {
		return fmt.Errorf("clearing attendees: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO reservation_attendees (reservation_id, user_id) VALUES ($1, $2)`,
			reservationID, userID,
		); err != nil {
			return fmt.Errorf("inserting attendee %s: %w", userID, err)
		}
	}
	return nil
}

// ListAttendees returns a reservation's attendees ordered by name ascending.
func (s *PGStore) ListAttendees(ctx context.Context, reservationID string) ([]Attendee, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.name, u.email
		 FROM reservation_attendees ra
		 JOIN users u ON u.id = ra.user_id
		 WHERE ra.reservation_id = $1
		 ORDER BY u.name ASC`,
		reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing attendees: %w", err)
	}
	defer rows.Close()

	var attendees []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, fmt.Errorf("scanning attendee row: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// ListOwnerWeek returns the owner's reservations in a room overlapping
// [weekStart, weekEnd), ordered by start ascending.
func (s *PGStore) ListOwnerWeek(ctx context.Context, roomID, userID string, weekStart, weekEnd time.Time) ([]WeekItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.title, t.start_at, t.end_at, u.name
		 FROM reservations r
		 JOIN timetables t ON t.id = r.timetable_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.user_id = $1 AND t.room_id = $2
		   AND t.start_at < $4 AND t.end_at > $3
		 ORDER BY t.start_at ASC`,
		userID, roomID, weekStart, weekEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("listing week reservations: %w", err)
	}
	defer rows.Close()

	var items []WeekItem
	for rows.Next() {
		var item WeekItem
		if err := rows.Scan(&item.ID, &item.Title, &item.StartAt, &item.EndAt, &item.CreatedByName); err != nil {
			return nil, fmt.Errorf("scanning week row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListOwnerMonthStarts returns the owner's reservations in a room starting
// within [monthStart, monthEnd), ordered by start ascending.
func (s *PGStore) ListOwnerMonthStarts(ctx context.Context, roomID, userID string, monthStart, monthEnd time.Time) ([]MonthRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.title, t.start_at
		 FROM reservations r
		 JOIN timetables t ON t.id = r.timetable_id
		 WHERE r.user_id = $1 AND t.room_id = $2
		   AND t.start_at >= $3 AND t.start_at < $4
		 ORDER BY t.start_at ASC`,
		userID, roomID, monthStart, monthEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("listing month reservations: %w", err)
	}
	defer rows.Close()

	var items []MonthRow
	for rows.Next() {
		var item MonthRow
		if err := rows.Scan(&item.ID, &item.Title, &item.StartAt); err != nil {
			return nil, fmt.Errorf("scanning month row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
