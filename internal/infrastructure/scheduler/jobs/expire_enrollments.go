// Package jobs contains implementations of scheduled jobs for Learning Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/learnhub/learning-hub/internal/application/command"
	"github.com/learnhub/learning-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE ENROLLMENTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpireEnrollmentsJob sweeps active enrollments whose access window has
// lapsed and transitions them to expired. The sweep is the authoritative
// path for expiry; reads never mutate state, so an enrollment stays active
// in storage until this job observes the lapsed deadline.
type ExpireEnrollmentsJob struct {
	handler *command.ExpireEnrollmentsHandler
	logger  *slog.Logger
	config  ExpireEnrollmentsConfig
	retrier *retry.Retrier

	lastRunStats atomic.Value // *ExpireEnrollmentsStats
}

// ExpireEnrollmentsConfig contains configuration for the expiry sweep.
type ExpireEnrollmentsConfig struct {
	// BatchSize limits how many enrollments one sweep processes.
	// Zero uses the handler default.
	BatchSize int

	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration

	// MaxAttempts is how many times a failed sweep is retried before
	// the job run is reported as failed. The sweep is idempotent, so
	// retrying a partially applied batch is safe.
	MaxAttempts int
}

// DefaultExpireEnrollmentsConfig returns sensible defaults.
func DefaultExpireEnrollmentsConfig() ExpireEnrollmentsConfig {
	return ExpireEnrollmentsConfig{
		BatchSize:   500,
		Timeout:     2 * time.Minute,
		MaxAttempts: 3,
	}
}

// ExpireEnrollmentsStats holds statistics from the last sweep.
type ExpireEnrollmentsStats struct {
	StartedAt time.Time
	Duration  time.Duration
	Expired   int
	Failed    int
}

// NewExpireEnrollmentsJob creates the expiry sweep job.
func NewExpireEnrollmentsJob(
	handler *command.ExpireEnrollmentsHandler,
	logger *slog.Logger,
	config ExpireEnrollmentsConfig,
) *ExpireEnrollmentsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}

	retrier := retry.New(
		retry.WithMaxAttempts(config.MaxAttempts),
		retry.WithInitialDelay(2*time.Second),
		retry.WithMaxDelay(30*time.Second),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("expiry sweep attempt failed, retrying",
				"attempt", attempt,
				"delay", delay.String(),
				"error", err,
			)
		}),
	)

	return &ExpireEnrollmentsJob{
		handler: handler,
		logger:  logger,
		config:  config,
		retrier: retrier,
	}
}

// Name returns the unique name of this job.
func (j *ExpireEnrollmentsJob) Name() string {
	return "expire_enrollments"
}

// Description returns a human-readable description.
func (j *ExpireEnrollmentsJob) Description() string {
	return "Transitions active enrollments past their access deadline to expired"
}

// Run executes one expiry sweep.
func (j *ExpireEnrollmentsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	startedAt := time.Now()
	var result *command.ExpireEnrollmentsResult

	err := j.retrier.Do(ctx, func(ctx context.Context) error {
		res, handleErr := j.handler.Handle(ctx, command.ExpireEnrollmentsCommand{
			Limit: j.config.BatchSize,
		})
		if handleErr != nil {
			// Listing or updating can fail on transient database
			// outages; the sweep is idempotent so a retry is safe.
			return retry.Retryable(handleErr)
		}
		result = res
		return nil
	})
	if err != nil {
		return fmt.Errorf("expire enrollments sweep: %w", err)
	}

	stats := &ExpireEnrollmentsStats{
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Expired:   result.Expired,
		Failed:    result.Failed,
	}
	j.lastRunStats.Store(stats)

	j.logger.Info("expiry sweep completed",
		"expired", result.Expired,
		"failed", result.Failed,
		"duration", stats.Duration.String(),
	)

	if result.Failed > 0 {
		return fmt.Errorf("expire enrollments sweep: %d enrollments failed to expire", result.Failed)
	}

	return nil
}

// LastRunStats returns statistics from the most recent sweep, or nil if
// the job has not run yet.
func (j *ExpireEnrollmentsJob) LastRunStats() *ExpireEnrollmentsStats {
	stats, _ := j.lastRunStats.Load().(*ExpireEnrollmentsStats)
	return stats
}
