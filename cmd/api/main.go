package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reup-dayplan-backend/internal/autoplan"
	"reup-dayplan-backend/internal/config"
	"reup-dayplan-backend/internal/db"
	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
)

// ----------------------
//        MAIN
// ----------------------

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.New(logx.Config{}).Error("❌ Failed to load config", logx.Err(err))
		os.Exit(1)
	}
	log := logx.New(logx.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.JWTSecret == "" {
		log.Error("❌ JWT_SECRET is not set")
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Error("❌ Failed to connect DB", logx.String("driver", cfg.DBDriver), logx.Err(err))
		os.Exit(1)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		log.Error("❌ Failed to migrate DB", logx.Err(err))
		os.Exit(1)
	}
	log.Info("✅ Connected to DB", logx.String("driver", cfg.DBDriver))

	if cfg.AutoPlanCron != "" {
		runner, err := autoplan.New(database, autoplan.Config{
			Spec:        cfg.AutoPlanCron,
			Algorithm:   planner.Algorithm(cfg.AutoPlanAlgorithm),
			Weighted:    planner.Weighted{MaxCandidates: cfg.WeightedMaxCandidates},
			Concurrency: cfg.ApplyConcurrency,
		}, log)
		if err != nil {
			log.Error("❌ Invalid autoplan config", logx.Err(err))
			os.Exit(1)
		}
		runner.Start(ctx)
		defer runner.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newHandler(database, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("🚀 API server is running", logx.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("❌ Server stopped", logx.Err(err))
		os.Exit(1)
	}
	log.Info("👋 API server stopped")
}
