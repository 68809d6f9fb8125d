package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// User is the authenticated principal injected into the request context.
type User struct {
	ID    string
	Name  string
	Email string
}

// DirectoryLookup resolves a verified user id to the current account record.
// A (nil, nil) return means the account no longer exists.
type DirectoryLookup interface {
	FindUser(ctx context.Context, id string) (*User, error)
}

type contextKey int

const userContextKey contextKey = iota

// ContextWithUser returns a new context carrying the given user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the user from the context, or nil if not present.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// Middleware returns middleware that authenticates requests using the session
// cookie. The token is verified with the codec, then the user is re-fetched
// from the directory so a deleted account is rejected even with a valid
// signature. On success the user is injected into the request context.
func Middleware(codec *Codec, cookieName string, directory DirectoryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "login required")
				return
			}

			userID, ok := codec.Verify(cookie.Value)
			if !ok {
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			user, err := directory.FindUser(r.Context(), userID)
			if err != nil || user == nil {
				writeUnauthorized(w, "login required")
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
