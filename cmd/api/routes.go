package main

import (
	"database/sql"
	"net/http"

	"github.com/rs/cors"

	"reup-dayplan-backend/internal/analytics"
	"reup-dayplan-backend/internal/auth"
	"reup-dayplan-backend/internal/config"
	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
	"reup-dayplan-backend/internal/ratelimit"
	"reup-dayplan-backend/internal/settings"
	"reup-dayplan-backend/internal/tasks"
)

// methods routes one path by HTTP method.
func methods(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h, ok := m[r.Method]
		if !ok {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func newHandler(database *sql.DB, cfg *config.Config, log logx.Logger) http.Handler {
	am := auth.New([]byte(cfg.JWTSecret))
	limiter := ratelimit.New(cfg.PlanRatePerMin)
	planCfg := tasks.PlanConfig{
		Log:         log,
		Weighted:    planner.Weighted{MaxCandidates: cfg.WeightedMaxCandidates},
		Concurrency: cfg.ApplyConcurrency,
	}

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", methods(map[string]http.HandlerFunc{
		http.MethodPost: am.Wrap(tasks.CreateTaskHandler(database, planCfg)),
	}))
	mux.HandleFunc("/tasks/today", methods(map[string]http.HandlerFunc{
		http.MethodGet: am.Wrap(tasks.TodayTasksHandler(database, planCfg)),
	}))

	// ----- PLANNING API -----
	mux.HandleFunc("/plan", methods(map[string]http.HandlerFunc{
		http.MethodPost: am.Wrap(limiter.Wrap(tasks.PlanDayHandler(database, planCfg))),
	}))
	mux.HandleFunc("/settings/planning", methods(map[string]http.HandlerFunc{
		http.MethodGet: am.Wrap(settings.GetPlanningSettingsHandler(database)),
		http.MethodPut: am.Wrap(settings.SavePlanningSettingsHandler(database)),
	}))

	// ----- ANALYTICS -----
	mux.HandleFunc("/analytics/plan-shown", methods(map[string]http.HandlerFunc{
		http.MethodPost: am.Wrap(analytics.PlanShownHandler(database)),
	}))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Platform", "X-App-Version", "X-Session-Id"},
		AllowCredentials: true,
	})

	return c.Handler(mux)
}
