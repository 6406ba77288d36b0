package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/opsroster/internal/application"
	"github.com/example/opsroster/internal/config"
	httptransport "github.com/example/opsroster/internal/http"
	"github.com/example/opsroster/internal/logging"
	"github.com/example/opsroster/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Console: cfg.LogConsole}, os.Stdout)

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open storage")
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close storage")
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to apply migrations")
		os.Exit(1)
	}

	idGenerator := func() string { return uuid.NewString() }
	now := time.Now

	routineRepo := sqlite.NewRoutineRepository(storage)
	workItemRepo := sqlite.NewWorkItemRepository(storage)
	employeeRepo := sqlite.NewEmployeeRepository(storage)
	shiftRepo := sqlite.NewShiftRepository(storage)
	assignmentRepo := sqlite.NewAssignmentRepository(storage)

	materializer := application.NewMaterializationService(routineRepo, workItemRepo, idGenerator, now, logger)
	recommender := application.NewRecommendationService(shiftRepo, employeeRepo, assignmentRepo, logger)

	defaults := application.MaterializationParams{
		HorizonDays: cfg.HorizonDays,
		Timezone:    cfg.Timezone,
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.MaterializeSpec, func() {
		result, err := materializer.Run(context.Background(), defaults)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled materialization failed")
			return
		}
		logger.Info().
			Int("created", result.Created).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("scheduled materialization finished")
	}); err != nil {
		logger.Error().Err(err).Str("spec", cfg.MaterializeSpec).Msg("invalid materialization schedule")
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(cfg.UrgencyRefreshSpec, func() {
		result, err := materializer.RefreshUrgency(context.Background())
		if err != nil {
			logger.Error().Err(err).Msg("urgency refresh failed")
			return
		}
		logger.Info().
			Int("updated", result.Updated).
			Int("failed", result.Failed).
			Msg("urgency refresh finished")
	}); err != nil {
		logger.Error().Err(err).Str("spec", cfg.UrgencyRefreshSpec).Msg("invalid urgency refresh schedule")
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Materializations: httptransport.NewMaterializationHandler(materializer, defaults, logger),
		Suggestions:      httptransport.NewSuggestionHandler(recommender, logger),
		WorkItems:        httptransport.NewWorkItemHandler(materializer, logger),
		Health:           httptransport.NewHealthHandler(storage, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("roster API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server encountered error")
		os.Exit(1)
	}
}
