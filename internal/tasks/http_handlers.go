package tasks

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"reup-dayplan-backend/internal/analytics"
	"reup-dayplan-backend/internal/auth"
	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
	"reup-dayplan-backend/internal/settings"
)

// PlanConfig carries what the plan endpoint needs besides the database.
type PlanConfig struct {
	Log         logx.Logger
	Weighted    planner.Weighted
	Concurrency int
	// Now is the wall clock; nil means time.Now.
	Now func() time.Time
}

func (c PlanConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func buildCombinedTaskText(title, description string) (safeTitle, desc, combined string) {
	t := strings.TrimSpace(title)
	d := strings.TrimSpace(description)

	if t == "" && d != "" {
		t = "Без названия"
	}
	if t == "" && d == "" {
		return "", "", ""
	}

	safeTitle = t
	desc = d

	combined = safeTitle
	if desc != "" {
		combined = combined + "\n\n" + desc
	}
	return
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// -------------------------------
// HANDLERS
// -------------------------------

func TodayTasksHandler(dbx *sql.DB, cfg PlanConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		list, err := NewStore(dbx, uid, cfg.now()).List(r.Context())
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Task{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateTaskHandler(dbx *sql.DB, cfg PlanConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Title           string       `json:"title"`
			Description     string       `json:"description"`
			Category        string       `json:"category"`
			Important       bool         `json:"important"`
			Kind            planner.Kind `json:"kind"`
			DurationMinutes int          `json:"duration_minutes"`
			StartTime       string       `json:"start_time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		safeTitle, desc, combined := buildCombinedTaskText(body.Title, body.Description)
		if combined == "" {
			http.Error(w, "empty task", http.StatusBadRequest)
			return
		}
		switch body.Kind {
		case "", planner.KindFixed, planner.KindFlexible:
		default:
			http.Error(w, "invalid kind", http.StatusBadRequest)
			return
		}
		if body.DurationMinutes < 0 || body.DurationMinutes > planner.MinutesPerDay {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		if body.StartTime != "" {
			m, err := planner.ParseTime(body.StartTime)
			if err != nil {
				http.Error(w, "invalid start_time", http.StatusBadRequest)
				return
			}
			body.StartTime = planner.FormatTime(m)
		}

		t, err := NewStore(dbx, uid, cfg.now()).Create(r.Context(), Task{
			Text:            combined,
			Title:           safeTitle,
			Description:     desc,
			Category:        strings.TrimSpace(body.Category),
			Important:       body.Important,
			Kind:            body.Kind,
			DurationMinutes: body.DurationMinutes,
			StartTime:       body.StartTime,
		})
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// PlanDayHandler runs the day planner for the caller. Pending decisions
// come back as 409 with the report; the client asks the user and posts
// again with the answers.
func PlanDayHandler(dbx *sql.DB, cfg PlanConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// empty body plans with stored settings and no decisions
		var body planRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		now := cfg.now()
		if body.Now != "" {
			m, err := planner.ParseTime(body.Now)
			if err != nil {
				http.Error(w, "invalid now", http.StatusBadRequest)
				return
			}
			now = time.Date(now.Year(), now.Month(), now.Day(), m/60, m%60, 0, 0, now.Location())
		}

		o := &dayplan.Orchestrator{
			Tasks:       NewStore(dbx, uid, now),
			Settings:    settings.NewStore(dbx, uid),
			Log:         cfg.Log.With(logx.Int("user_id", uid)),
			Weighted:    cfg.Weighted,
			Concurrency: cfg.Concurrency,
			Now:         func() time.Time { return now },
		}
		decisions := dayplan.Decisions{
			ConvertFixed: dayplan.ParseFixedDecision(body.ConvertFixed),
			Algorithm:    dayplan.ParseChoice(body.Algorithm),
		}

		out, err := o.Plan(r.Context(), nil, decisions)
		if err != nil {
			if errors.Is(err, planner.ErrInvalidWindow) || errors.Is(err, planner.ErrInvalidTime) {
				http.Error(w, "invalid planning settings: "+err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "plan error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid

		if out.State.Awaiting() {
			rep := dayplan.NewReport(out)
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventPlanBlocked, map[string]any{
				"state":     out.State,
				"ambiguous": len(out.Ambiguous),
			}, "")
			writeJSON(w, http.StatusConflict, rep)
			return
		}

		if body.DryRun {
			rep := dayplan.NewReport(out)
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventPlanPreviewed, planProps(rep), "")
			writeJSON(w, http.StatusOK, rep)
			return
		}

		rep := o.Commit(r.Context(), out)

		// analytics: day_planned
		if rep.State == dayplan.StateDone {
			key := analytics.SourceEventKeyFromRequest(r)
			if key == "" {
				key = "day_planned:" + rep.RunID
			}
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventDayPlanned, planProps(rep), key)
		}

		writeJSON(w, http.StatusOK, rep)
	}
}

func planProps(rep dayplan.Report) map[string]any {
	return map[string]any{
		"run_id":    rep.RunID,
		"algorithm": rep.Algorithm,
		"fell_back": rep.FellBack,
		"placed":    rep.Placed,
		"unplaced":  rep.Unplaced,
		"failed":    rep.Failed,
	}
}
