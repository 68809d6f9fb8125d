package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/ratelimit"
	"github.com/roomlab/roombook/internal/reservation"
	"github.com/roomlab/roombook/internal/room"
	"github.com/roomlab/roombook/internal/timetable"
	"github.com/roomlab/roombook/internal/user"
)

const testCookieName = "ROOMBOOK_SESSION"

// ---------------------------------------------------------------------------
// In-memory fakes backing the real services
// ---------------------------------------------------------------------------

// memDirectory is an in-memory user directory covering the API, reservation,
// and auth lookup surfaces.
type memDirectory struct {
	users map[string]*user.User
}

func (d *memDirectory) GetByID(ctx context.Context, id string) (*user.User, error) {
	return d.users[id], nil
}

func (d *memDirectory) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	norm := user.NormalizeEmail(email)
	for _, u := range d.users {
		if user.NormalizeEmail(u.Email) == norm {
			return u, nil
		}
	}
	return nil, nil
}

func (d *memDirectory) Search(ctx context.Context, q string, limit int) ([]user.SearchItem, error) {
	var out []user.SearchItem
	needle := strings.ToLower(q)
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, user.SearchItem{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *memDirectory) ResolveMany(ctx context.Context, identifiers []string) (map[string]string, error) {
	index := map[string]string{}
	for _, u := range d.users {
		index[u.ID] = u.ID
		index[user.NormalizeEmail(u.Email)] = u.ID
	}
	out := map[string]string{}
	for _, ident := range identifiers {
		if id, ok := index[ident]; ok {
			out[ident] = id
		}
	}
	return out, nil
}

// FindUser satisfies auth.DirectoryLookup.
func (d *memDirectory) FindUser(ctx context.Context, id string) (*auth.User, error) {
	u := d.users[id]
	if u == nil {
		return nil, nil
	}
	return &auth.User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

// memStore is an in-memory reservation store.
type memStore struct {
	dir          *memDirectory
	timetables   map[string]*reservation.Timetable
	reservations map[string]*reservation.Reservation
	attendees    map[string][]string
	seq          int
}

func newMemStore(dir *memDirectory) *memStore {
	return &memStore{
		dir:          dir,
		timetables:   map[string]*reservation.Timetable{},
		reservations: map[string]*reservation.Reservation{},
		attendees:    map[string][]string{},
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(reservation.Store) error) error {
	return fn(s)
}

func (s *memStore) FindOrCreateTimetable(ctx context.Context, roomID string, startAt, endAt time.Time) (*reservation.Timetable, error) {
	for _, t := range s.timetables {
		if t.RoomID == roomID && t.StartAt.Equal(startAt) && t.EndAt.Equal(endAt) {
			return t, nil
		}
	}
	s.seq++
	t := &reservation.Timetable{ID: fmt.Sprintf("ttb_%d", s.seq), RoomID: roomID, StartAt: startAt, EndAt: endAt}
	s.timetables[t.ID] = t
	return t, nil
}

func (s *memStore) HasConflict(ctx context.Context, roomID string, startAt, endAt time.Time, excludeReservationID string) (bool, error) {
	for _, r := range s.reservations {
		if r.ID == excludeReservationID {
			continue
		}
		t := s.timetables[r.TimetableID]
		if t == nil || t.RoomID != roomID {
			continue
		}
		if t.StartAt.Before(endAt) && t.EndAt.After(startAt) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(ctx context.Context, r *reservation.Reservation) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	s.reservations[r.ID] = &cp
	return nil
}

func (s *memStore) Update(ctx context.Context, r *reservation.Reservation) error {
	r.UpdatedAt = time.Now()
	cp := *r
	s.reservations[r.ID] = &cp
	return nil
}

func (s *memStore) FindOwnedDetail(ctx context.Context, reservationID, userID string) (*reservation.Detail, error) {
	r, ok := s.reservations[reservationID]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	name := ""
	if u := s.dir.users[r.UserID]; u != nil {
		name = u.Name
	}
	return &reservation.Detail{Reservation: *r, Timetable: *s.timetables[r.TimetableID], CreatorName: name}, nil
}

func (s *memStore) DeleteOwned(ctx context.Context, reservationID, userID string) (bool, error) {
	r, ok := s.reservations[reservationID]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(s.timetables, r.TimetableID)
	delete(s.reservations, reservationID)
	delete(s.attendees, reservationID)
	return true, nil
}

func (s *memStore) ReplaceAttendees(ctx context.Context, reservationID string, userIDs []string) error {
	s.attendees[reservationID] = append([]string(nil), userIDs...)
	return nil
}

func (s *memStore) ListAttendees(ctx context.Context, reservationID string) ([]reservation.Attendee, error) {
	var out []reservation.Attendee
	for _, id := range s.attendees[reservationID] {
		u := s.dir.users[id]
		out = append(out, reservation.Attendee{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func (s *memStore) ListOwnerWeek(ctx context.Context, roomID, userID string, weekStart, weekEnd time.Time) ([]reservation.WeekItem, error) {
	var out []reservation.WeekItem
	for _, r := range s.reservations {
		t := s.timetables[r.TimetableID]
		if r.UserID != userID || t.RoomID != roomID {
			continue
		}
		if t.StartAt.Before(weekEnd) && t.EndAt.After(weekStart) {
			name := ""
			if u := s.dir.users[r.UserID]; u != nil {
				name = u.Name
			}
			out = append(out, reservation.WeekItem{ID: r.ID, Title: r.Title, StartAt: t.StartAt, EndAt: t.EndAt, CreatedByName: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (s *memStore) ListOwnerMonthStarts(ctx context.Context, roomID, userID string, monthStart, monthEnd time.Time) ([]reservation.MonthRow, error) {
	var out []reservation.MonthRow
	for _, r := range s.reservations {
		t := s.timetables[r.TimetableID]
		if r.UserID != userID || t.RoomID != roomID {
			continue
		}
		if !t.StartAt.Before(monthStart) && t.StartAt.Before(monthEnd) {
			out = append(out, reservation.MonthRow{ID: r.ID, Title: r.Title, StartAt: t.StartAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Test server setup
// ---------------------------------------------------------------------------

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

type testServer struct {
	handler http.Handler
	store   *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := &memDirectory{users: map[string]*user.User{
		"usr_alice": {ID: "usr_alice", Name: "Alice", Email: "alice@example.com", PasswordHash: hashPassword(t, "alicepw")},
		"usr_bob":   {ID: "usr_bob", Name: "Bob", Email: "bob@example.com", PasswordHash: hashPassword(t, "bobpw")},
	}}
	store := newMemStore(dir)

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}

	codec := auth.NewCodec("test-secret", time.Hour)
	cookies := auth.CookieConfig{Name: testCookieName, Path: "/", SameSite: http.SameSiteLaxMode, MaxAge: 3600}

	handler := NewRouter(RouterDeps{
		Users:          dir,
		Directory:      dir,
		Reservations:   reservation.NewService(store, dir, room.NewCatalog(nil)),
		Timetable:      timetable.NewService(store, loc),
		Codec:          codec,
		Cookies:        cookies,
		Limiter:        ratelimit.New(100, time.Minute),
		AllowedOrigins: []string{"*"},
		Location:       loc,
		DayStart:       "09:00",
		DayEnd:         "18:00",
	})
	return &testServer{handler: handler, store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login authenticates and returns the session cookie.
func (ts *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	decodeBody(t, rec, &env)
	return env.Error.Code
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", body["status"])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "alicepw"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		User struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, rec, &body)
	if body.User.ID != "usr_alice" || body.User.Name != "Alice" {
		t.Errorf("unexpected user payload: %+v", body.User)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestLoginMixedCaseEmail(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "  Alice@Example.COM ", "alicepw")
	if cookie == nil {
		t.Fatal("mixed-case email login failed")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct {
		name  string
		email string
		pw    string
	}{
		{"wrong password", "alice@example.com", "nope"},
		{"unknown email", "ghost@example.com", "alicepw"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": tc.email, "password": tc.pw}, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("error code = %q", code)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/auth/me", "/api/reservations/rsv_x", "/api/timetable?view=week", "/api/users/search?q=a"} {
		rec := ts.do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
			continue
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("%s: error code = %q", path, code)
		}
	}
}

func TestMeAndLogout(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "bob@example.com", "bobpw")

	rec := ts.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d", rec.Code)
	}
	var me map[string]string
	decodeBody(t, rec, &me)
	if me["id"] != "usr_bob" || me["email"] != "bob@example.com" {
		t.Errorf("me payload = %v", me)
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

// ---------------------------------------------------------------------------
// Reservations
// ---------------------------------------------------------------------------

func createReservation(t *testing.T, ts *testServer, cookie *http.Cookie, body map[string]any) reservationSummary {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/reservations", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var out reservationSummary
	decodeBody(t, rec, &out)
	return out
}

func TestCreateAndGetReservation(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	created := createReservation(t, ts, cookie, map[string]any{
		"title":     "Planning",
		"purpose":   "weekly sync",
		"start_at":  "2026-09-01T10:00:00+09:00",
		"end_at":    "2026-09-01T11:00:00+09:00",
		"attendees": []string{"bob@example.com"},
	})
	if created.Room.ID != "A" || created.Room.Name != "Main Conference Room" {
		t.Errorf("default room = %+v", created.Room)
	}
	if created.ID == "" {
		t.Fatal("missing reservation id")
	}

	rec := ts.do(t, http.MethodGet, "/api/reservations/"+created.ID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	var detail reservationDetail
	decodeBody(t, rec, &detail)
	if detail.CreatedBy.Name != "Alice" {
		t.Errorf("created_by = %+v", detail.CreatedBy)
	}
	if len(detail.Attendees) != 1 || detail.Attendees[0].ID != "usr_bob" {
		t.Errorf("attendees = %+v", detail.Attendees)
	}
}

func TestCreateConflictExactWindow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com", "alicepw")
	bob := ts.login(t, "bob@example.com", "bobpw")

	body := map[string]any{
		"title":    "first",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	}
	createReservation(t, ts, alice, body)

	body["title"] = "second"
	rec := ts.do(t, http.MethodPost, "/api/reservations", body, bob)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "RESERVATION_CONFLICT" {
		t.Errorf("error code = %q", code)
	}
}

func TestCreateAdjacentWindows(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com", "alicepw")
	bob := ts.login(t, "bob@example.com", "bobpw")

	createReservation(t, ts, alice, map[string]any{
		"title":    "first",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	})

	rec := ts.do(t, http.MethodPost, "/api/reservations", map[string]any{
		"title":    "second",
		"start_at": "2026-09-01T11:00:00+09:00",
		"end_at":   "2026-09-01T12:00:00+09:00",
	}, bob)
	if rec.Code != http.StatusCreated {
		t.Fatalf("adjacent window rejected: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateNaiveTimestampRejected(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	// No UTC offset on start_at.
	raw := `{"title":"x","start_at":"2026-09-01T10:00:00","end_at":"2026-09-01T11:00:00+09:00"}`
	rec := ts.do(t, http.MethodPost, "/api/reservations", raw, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_ARGUMENT" {
		t.Errorf("error code = %q", code)
	}
}

func TestCreateMissingTitle(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	rec := ts.do(t, http.MethodPost, "/api/reservations", map[string]any{
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReservationOwnershipHidden(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com", "alicepw")
	bob := ts.login(t, "bob@example.com", "bobpw")

	created := createReservation(t, ts, alice, map[string]any{
		"title":    "private",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	})

	// Another user must see 404, not 403, for someone else's reservation.
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := ts.do(t, method, "/api/reservations/"+created.ID, nil, bob)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s as non-owner: expected 404, got %d", method, rec.Code)
		}
	}
}

func TestPatchReservation(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	created := createReservation(t, ts, cookie, map[string]any{
		"title":     "before",
		"purpose":   "old",
		"start_at":  "2026-09-01T10:00:00+09:00",
		"end_at":    "2026-09-01T11:00:00+09:00",
		"attendees": []string{"usr_bob"},
	})

	// Partial update: only the title changes.
	rec := ts.do(t, http.MethodPatch, "/api/reservations/"+created.ID, map[string]any{"title": "after"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	var detail reservationDetail
	decodeBody(t, rec, &detail)
	if detail.Title != "after" {
		t.Errorf("title = %q", detail.Title)
	}
	if detail.Purpose == nil || *detail.Purpose != "old" {
		t.Errorf("purpose lost on partial update: %v", detail.Purpose)
	}
	if len(detail.Attendees) != 1 {
		t.Errorf("attendees changed by omitted field: %+v", detail.Attendees)
	}

	// Null clears a nullable field.
	rec = ts.do(t, http.MethodPatch, "/api/reservations/"+created.ID, `{"purpose":null}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch null purpose: %d", rec.Code)
	}
	decodeBody(t, rec, &detail)
	if detail.Purpose != nil {
		t.Errorf("purpose not cleared: %v", *detail.Purpose)
	}

	// Empty attendee list clears the set.
	rec = ts.do(t, http.MethodPatch, "/api/reservations/"+created.ID, `{"attendees":[]}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch attendees: %d", rec.Code)
	}
	decodeBody(t, rec, &detail)
	if len(detail.Attendees) != 0 {
		t.Errorf("attendees not cleared: %+v", detail.Attendees)
	}
}

func TestDeleteReservation(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	created := createReservation(t, ts, cookie, map[string]any{
		"title":    "temp",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	})

	rec := ts.do(t, http.MethodDelete, "/api/reservations/"+created.ID, nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/reservations/"+created.ID, nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}

	// The freed window can be rebooked.
	rec = ts.do(t, http.MethodPost, "/api/reservations", map[string]any{
		"title":    "rebooked",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("rebook freed window: %d %s", rec.Code, rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Timetable views
// ---------------------------------------------------------------------------

func TestTimetableWeekView(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	createReservation(t, ts, cookie, map[string]any{
		"title":    "standup",
		"start_at": "2026-09-01T10:00:00+09:00",
		"end_at":   "2026-09-01T11:00:00+09:00",
	})

	// 2026-09-03 is a Thursday in the same week.
	rec := ts.do(t, http.MethodGet, "/api/timetable?view=week&anchor_date=2026-09-03", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("week view: %d %s", rec.Code, rec.Body.String())
	}
	var view struct {
		RoomID   string `json:"room_id"`
		DayStart string `json:"day_start"`
		DayEnd   string `json:"day_end"`
		Items    []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	decodeBody(t, rec, &view)
	if view.RoomID != "A" || view.DayStart != "09:00" || view.DayEnd != "18:00" {
		t.Errorf("view header = %+v", view)
	}
	if len(view.Items) != 1 || view.Items[0].Title != "standup" {
		t.Errorf("items = %+v", view.Items)
	}

	rec = ts.do(t, http.MethodGet, "/api/timetable?view=week", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing anchor_date: expected 400, got %d", rec.Code)
	}
}

func TestTimetableMonthView(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	for _, hour := range []string{"09", "10", "11", "12"} {
		createReservation(t, ts, cookie, map[string]any{
			"title":    "mtg " + hour,
			"start_at": "2026-09-01T" + hour + ":00:00+09:00",
			"end_at":   "2026-09-01T" + hour + ":30:00+09:00",
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/timetable?view=month&month=2026-09", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("month view: %d %s", rec.Code, rec.Body.String())
	}
	var view struct {
		Month string `json:"month"`
		Days  []struct {
			Date    string   `json:"date"`
			Count   int      `json:"count"`
			Preview []string `json:"preview"`
		} `json:"days"`
	}
	decodeBody(t, rec, &view)
	if view.Month != "2026-09" || len(view.Days) != 1 {
		t.Fatalf("view = %+v", view)
	}
	day := view.Days[0]
	if day.Date != "2026-09-01" || day.Count != 4 || len(day.Preview) != 3 {
		t.Errorf("day = %+v", day)
	}

	rec = ts.do(t, http.MethodGet, "/api/timetable?view=month&month=September", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: expected 400, got %d", rec.Code)
	}
}

func TestTimetableBadView(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	rec := ts.do(t, http.MethodGet, "/api/timetable?view=year", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// User search
// ---------------------------------------------------------------------------

func TestUserSearch(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "alice@example.com", "alicepw")

	rec := ts.do(t, http.MethodGet, "/api/users/search?q=bob", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d", rec.Code)
	}
	var items []user.SearchItem
	decodeBody(t, rec, &items)
	if len(items) != 1 || items[0].ID != "usr_bob" {
		t.Errorf("items = %+v", items)
	}

	rec = ts.do(t, http.MethodGet, "/api/users/search?q=", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty q: expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_ARGUMENT" {
		t.Errorf("error code = %q", code)
	}

	rec = ts.do(t, http.MethodGet, "/api/users/search?q=zzz", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("no-hit search: %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("no-hit body = %q", body)
	}
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil, nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestSecureHeaders(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}
