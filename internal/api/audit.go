package api

import (
	"log/slog"
	"net/http"

	"github.com/roomlab/roombook/internal/audit"
	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/ratelimit"
)

// AuditRecorder accepts audit events for asynchronous persistence.
// A nil recorder disables the persisted trail; the structured log entry is
// emitted either way.
type AuditRecorder interface {
	Record(ev audit.Event)
}

// auditLog emits a structured audit log entry for a booking action and, when a
// recorder is configured, queues the event for the persisted audit trail.
func auditLog(rec AuditRecorder, r *http.Request, action string, resourceType string, resourceID string, detail ...any) {
	ev := audit.Event{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           ratelimit.ClientIP(r),
		RequestID:    RequestIDFromContext(r.Context()),
	}
	if u := auth.UserFromContext(r.Context()); u != nil {
		ev.UserID = u.ID
		ev.UserEmail = u.Email
	}

	attrs := []any{
		"action", ev.Action,
		"resource_type", ev.ResourceType,
		"resource_id", ev.ResourceID,
		"ip", ev.IP,
		"request_id", ev.RequestID,
	}
	if ev.UserID != "" {
		attrs = append(attrs, "user_id", ev.UserID, "user_email", ev.UserEmail)
	}
	attrs = append(attrs, detail...)
	slog.Info("audit", attrs...)

	if rec != nil {
		rec.Record(ev)
	}
}
