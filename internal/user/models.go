package user

import "time"

// User is a provisioned account. There is no self-registration endpoint;
// accounts are created by the seed command or operator tooling.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserInput holds the fields required to provision a user.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SearchItem is the projection returned by directory searches.
type SearchItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
