// Package api wires the HTTP surface: routing, middleware, handlers, and the
// JSON error envelope.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/metrics"
	"github.com/roomlab/roombook/internal/ratelimit"
)

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users        UserDirectory
	Directory    auth.DirectoryLookup
	Reservations ReservationService
	Timetable    TimetableService
	Codec        *auth.Codec
	Cookies      auth.CookieConfig
	Limiter      *ratelimit.Limiter
	Metrics      *metrics.Metrics
	Audit        AuditRecorder
	DB           Pinger

	AllowedOrigins []string
	Location       *time.Location
	DayStart       string
	DayEnd         string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(slogRequestLogger)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// Handlers.
	var authMetrics AuthMetrics
	var bookingMetrics BookingMetrics
	if deps.Metrics != nil {
		authMetrics = deps.Metrics
		bookingMetrics = deps.Metrics
	}
	authH := newAuthHandler(deps.Users, deps.Codec, deps.Cookies, authMetrics, deps.Audit)
	reservations := newReservationsHandler(deps.Reservations, bookingMetrics, deps.Audit)
	views := newTimetableHandler(deps.Timetable, deps.Location, deps.DayStart, deps.DayEnd)
	users := newUsersHandler(deps.Users)

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]string{"status": status})
	})

	// Metrics summary.
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Handler())
	}

	// Login is public but rate limited per client IP.
	r.Group(func(pr chi.Router) {
		if deps.Limiter != nil {
			onReject := []func(){}
			if deps.Metrics != nil {
				onReject = append(onReject, deps.Metrics.IncRateLimitRejection)
			}
			pr.Use(ratelimit.Middleware(deps.Limiter, onReject...))
		}
		pr.Post("/api/auth/login", authH.Login)
	})

	// Session-authed routes.
	r.Group(func(ar chi.Router) {
		ar.Use(auth.Middleware(deps.Codec, deps.Cookies.Name, deps.Directory))

		ar.Get("/api/auth/me", authH.Me)
		ar.Post("/api/auth/logout", authH.Logout)

		ar.Post("/api/reservations", reservations.Create)
		ar.Get("/api/reservations/{id}", reservations.Get)
		ar.Patch("/api/reservations/{id}", reservations.Update)
		ar.Delete("/api/reservations/{id}", reservations.Delete)

		ar.Get("/api/timetable", views.View)
		ar.Get("/api/users/search", users.Search)
	})

	return r
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
		)
	})
}
