package api

import (
	"context"
	"net/http"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/user"
)

// UserDirectory is the user lookup surface the API depends on.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Search(ctx context.Context, q string, limit int) ([]user.SearchItem, error)
}

// AuthMetrics records login outcomes; a nil value disables recording.
type AuthMetrics interface {
	IncAuthSuccess()
	IncAuthFailure(reason string)
}

// authHandler groups authentication HTTP handlers.
type authHandler struct {
	users   UserDirectory
	codec   *auth.Codec
	cookies auth.CookieConfig
	metrics AuthMetrics
	audit   AuditRecorder
}

func newAuthHandler(users UserDirectory, codec *auth.Codec, cookies auth.CookieConfig, m AuthMetrics, rec AuditRecorder) *authHandler {
	return &authHandler{users: users, codec: codec, cookies: cookies, metrics: m, audit: rec}
}

// Login handles POST /api/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "failed to parse request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if u == nil || !user.CheckPassword(u, req.Password) {
		if h.metrics != nil {
			h.metrics.IncAuthFailure("bad_credentials")
		}
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	token := h.codec.Issue(u.ID)
	http.SetCookie(w, h.cookies.Session(token))
	if h.metrics != nil {
		h.metrics.IncAuthSuccess()
	}
	auditLog(h.audit, r, "login", "user", u.ID, "email", u.Email)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

// Me handles GET /api/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout only
// clears the cookie; the token stays valid until it expires.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookies.Expired())
	w.WriteHeader(http.StatusNoContent)
}
