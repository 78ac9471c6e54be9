package analytics

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

// plan_shown: клиент показал превью плана дня
func PlanShownHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			RunID    string `json:"run_id"`
			Placed   int    `json:"placed"`
			Unplaced int    `json:"unplaced"`
			Action   string `json:"action"` // applied/dismissed/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch body.Action {
		case "applied", "dismissed":
		default:
			body.Action = "unknown"
		}

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"run_id":   body.RunID,
			"placed":   body.Placed,
			"unplaced": body.Unplaced,
			"action":   body.Action,
		}

		_ = Log(r.Context(), dbx, env, "plan_shown", props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
