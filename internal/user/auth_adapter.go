package user

import (
	"context"

	"github.com/roomlab/roombook/internal/auth"
)

// AuthAdapter adapts Store to the auth.DirectoryLookup interface.
type AuthAdapter struct {
	store *Store
}

// NewAuthAdapter creates a new AuthAdapter wrapping the given user store.
func NewAuthAdapter(store *Store) *AuthAdapter {
	return &AuthAdapter{store: store}
}

// FindUser resolves a verified user id to the current account record.
func (a *AuthAdapter) FindUser(ctx context.Context, id string) (*auth.User, error) {
	u, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return &auth.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}
