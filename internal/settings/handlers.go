package settings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"reup-dayplan-backend/internal/analytics"
	"reup-dayplan-backend/internal/auth"
	"reup-dayplan-backend/internal/planner"
)

type settingsBody struct {
	planner.Settings
	AutoPlan *bool `json:"auto_plan,omitempty"`
}

func GetPlanningSettingsHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		store := NewStore(dbx, uid)
		ps, err := store.GetPlanningSettings(r.Context())
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		on, err := store.AutoPlan(r.Context())
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(settingsBody{Settings: ps, AutoPlan: &on})
	}
}

func SavePlanningSettingsHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body settingsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		store := NewStore(dbx, uid)
		if err := store.SavePlanningSettings(r.Context(), body.Settings); err != nil {
			if errors.Is(err, ErrInvalidSettings) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if body.AutoPlan != nil {
			if err := store.SetAutoPlan(r.Context(), *body.AutoPlan); err != nil {
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		// analytics: planning_settings_saved
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"algorithm": body.Algorithm,
				"task_gap":  body.TaskGap,
				"auto_plan": body.AutoPlan,
			}
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventSettingsSaved, props, analytics.SourceEventKeyFromRequest(r))
		}

		on, _ := store.AutoPlan(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(settingsBody{Settings: body.Settings, AutoPlan: &on})
	}
}
