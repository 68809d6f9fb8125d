// Package user implements the user directory: identity lookups, password
// verification, search, and batched attendee-identifier resolution.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomlab/roombook/internal/ident"
)

// Store provides database operations for the user directory.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, name, email, password_hash, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u, err := scanUser(s.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING %s`, userColumns),
		ident.New("usr"), in.Name, NormalizeEmail(in.Email), string(hash),
	))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key. Returns (nil, nil) when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, matched case-insensitively after
// trimming. Returns (nil, nil) when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE lower(email) = $1`, userColumns),
		NormalizeEmail(email),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// Search returns users whose name or email contains q (case-insensitive),
// ordered by name ascending, capped at limit.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]SearchItem, error) {
	pattern := "%" + strings.TrimSpace(q) + "%"
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email FROM users
		 WHERE name ILIKE $1 OR email ILIKE $1
		 ORDER BY name ASC
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var items []SearchItem
	for rows.Next() {
		var item SearchItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Email); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResolveMany looks up a batch of identifiers that may be user ids or email
// addresses. The returned map is keyed by both the id and the email of every
// matched user, so either form of identifier resolves to the canonical id.
func (s *Store) ResolveMany(ctx context.Context, identifiers []string) (map[string]string, error) {
	if len(identifiers) == 0 {
		return map[string]string{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, email FROM users WHERE id = ANY($1) OR email = ANY($1)`,
		identifiers,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving identifiers: %w", err)
	}
	defer rows.Close()

	resolved := make(map[string]string)
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, fmt.Errorf("scanning identifier row: %w", err)
		}
		resolved[id] = id
		resolved[email] = id
	}
	return resolved, rows.Err()
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func CheckPassword(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// NormalizeEmail trims and lowercases an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
