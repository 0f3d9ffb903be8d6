// Package main is the entry point for the Learning Hub API server.
//
// The service owns the enrollment lifecycle and learning-progress tracking
// for the course platform: registering learners, admitting them into
// courses, accumulating per-lesson progress, and cascading lesson
// completions into course completions.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: Postgres repositories, Redis caches, event bus, scheduler
// - Interface: REST API handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/learnhub/learning-hub/config"
	"github.com/learnhub/learning-hub/internal/application/command"
	"github.com/learnhub/learning-hub/internal/application/query"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/infrastructure/messaging"
	"github.com/learnhub/learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/learning-hub/internal/infrastructure/persistence/redis"
	"github.com/learnhub/learning-hub/internal/infrastructure/scheduler"
	"github.com/learnhub/learning-hub/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/learnhub/learning-hub/internal/interface/http"
	"github.com/learnhub/learning-hub/internal/interface/http/handlers"
	"github.com/learnhub/learning-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Learning Hub",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var progressCache progress.Cache = progress.NoopCache{}
	var enrollmentCache enrollment.Cache = enrollment.NoopCache{}
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection...")
			_ = redisCache.Close()
		}()

		progressCache = redis.NewProgressCache(redisCache)
		enrollmentCache = redis.NewEnrollmentCache(redisCache)
		log.Info("Redis connection established")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	learnerRepo := postgres.NewLearnerRepository(dbConn)
	catalogRepo := postgres.NewCatalogRepository(dbConn)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	progressRepo := postgres.NewProgressRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBusConfig.AsyncMode = true
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if err := messaging.RegisterAuditLogger(eventBus, log); err != nil {
		return fmt.Errorf("failed to register audit logger: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	registerLearnerCmd := command.NewRegisterLearnerHandler(learnerRepo, eventBus)
	enrollCmd := command.NewEnrollHandler(
		catalogRepo, enrollmentRepo, enrollmentCache, eventBus,
		command.EnrollHandlerConfig{EnrollmentDuration: cfg.Enrollment.AccessDuration},
	)
	recordProgressCmd := command.NewRecordProgressHandler(
		catalogRepo, enrollmentRepo, progressRepo, progressCache,
	)
	completeLessonCmd := command.NewCompleteLessonHandler(
		catalogRepo, enrollmentRepo, progressRepo,
		progressCache, enrollmentCache, eventBus,
	)
	expireEnrollmentsCmd := command.NewExpireEnrollmentsHandler(
		enrollmentRepo, enrollmentCache, eventBus,
	)

	lessonProgressQuery := query.NewGetLessonProgressHandler(
		catalogRepo, progressRepo, progressCache,
	)
	courseProgressQuery := query.NewGetCourseProgressHandler(
		catalogRepo, enrollmentRepo, progressRepo, progressCache,
	)
	enrollmentQuery := query.NewGetEnrollmentHandler(
		enrollmentRepo, enrollmentCache,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. SCHEDULER (enrollment expiry sweep)
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("initializing scheduler...")
		schedConfig := scheduler.DefaultSchedulerConfig()
		schedConfig.Logger = log
		schedConfig.Timezone = cfg.App.Location
		sched = scheduler.NewScheduler(schedConfig)

		expiryJob := jobs.NewExpireEnrollmentsJob(expireEnrollmentsCmd, log, jobs.ExpireEnrollmentsConfig{
			BatchSize: cfg.Scheduler.ExpiryBatchSize,
			Timeout:   cfg.Scheduler.JobTimeout,
		})
		if err := sched.Register(expiryJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ExpiryInterval)); err != nil {
			return fmt.Errorf("failed to register expiry job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewPingCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewPingCheck(redisCache))
	}

	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	serverConfig.EnableCORS = cfg.HTTP.EnableCORS
	serverConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	serverConfig.EnableMetrics = cfg.Observability.MetricsEnabled

	httpLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		RegisterLearnerHandler:   registerLearnerCmd,
		EnrollHandler:            enrollCmd,
		RecordProgressHandler:    recordProgressCmd,
		CompleteLessonHandler:    completeLessonCmd,
		GetLessonProgressHandler: lessonProgressQuery,
		GetCourseProgressHandler: courseProgressQuery,
		GetEnrollmentHandler:     enrollmentQuery,
		Logger:                   httpLog,
		HealthChecker:            healthChecker,
	})

	errCh := server.StartAsync()
	log.Info("HTTP server started", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 11. WAIT FOR SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("service error", "error", err)
			return err
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// Scheduler, event bus, Redis, and the database close via defers.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON for production (easier for log aggregators)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
