package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for the audit trail.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// BatchInsert writes a slice of events to the database in a single multi-row
// INSERT statement. It is a no-op when events is empty.
func (s *Store) BatchInsert(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	const cols = 8 // number of columns per row (excluding server-generated id)
	args := make([]any, 0, len(events)*cols)
	rows := make([]string, 0, len(events))

	for i, ev := range events {
		base := i * cols
		rows = append(rows, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args,
			ev.UserID,
			ev.UserEmail,
			ev.Action,
			ev.ResourceType,
			ev.ResourceID,
			ev.IP,
			ev.RequestID,
			ev.At,
		)
	}

	query := `INSERT INTO audit_events
		(user_id, user_email, action, resource_type, resource_id, ip, request_id, at)
		VALUES ` + strings.Join(rows, ", ")

	_, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("batch inserting audit events: %w", err)
	}

	return nil
}
