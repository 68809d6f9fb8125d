package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/user"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 20
)

// usersHandler serves the attendee-picker search endpoint.
type usersHandler struct {
	users UserDirectory
}

func newUsersHandler(users UserDirectory) *usersHandler {
	return &usersHandler{users: users}
}

// Search handles GET /api/users/search?q=&limit=.
func (h *usersHandler) Search(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "q is required")
		return
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	items, err := h.users.Search(r.Context(), q, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []user.SearchItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
