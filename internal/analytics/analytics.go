package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Event names recorded by the planner.
const (
	EventDayPlanned     = "day_planned"
	EventPlanPreviewed  = "plan_previewed"
	EventPlanBlocked    = "plan_blocked"
	EventSettingsSaved  = "planning_settings_saved"
	EventAutoPlanFailed = "autoplan_failed"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
	IPCountry    string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// System is the envelope for events raised by background jobs.
func System(userID int) Envelope {
	return Envelope{UserID: userID, Platform: "server"}
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(int)
	return uid, ok
}

// SourceEventKeyFromRequest returns the client idempotency key, if any.
// Duplicate keys are ignored on insert.
func SourceEventKeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Log inserts one analytics event. Failures never break the calling flow,
// so the error is only returned for the caller to log.
// Never logs sensitive raw text; caller passes sanitized props.
func Log(ctx context.Context, db *sql.DB, env Envelope, eventName string, props any, sourceEventKey string) error {
	if eventName == "" || db == nil {
		return nil
	}

	userID := env.UserID
	if userID == 0 {
		uid, ok := UserIDFromContext(ctx)
		if !ok {
			// no user => skip
			return nil
		}
		userID = uid
	}

	b, err := json.Marshal(props)
	if err != nil {
		return nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale, ip_country,
			source_event_key,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_event_key) DO NOTHING
	`, eventName, time.Now().UTC(),
		userID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
