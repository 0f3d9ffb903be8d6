package command

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE ENROLLMENTS COMMAND
// Batch sweep executed by the scheduler. Finds active enrollments whose
// expiry date has passed and closes them. Expired enrollments remain
// re-enrollable; their progress rows are kept.
// ══════════════════════════════════════════════════════════════════════════════

// ExpireEnrollmentsCommand contains the sweep parameters.
type ExpireEnrollmentsCommand struct {
	// Now is the sweep instant. Zero means time.Now().
	Now time.Time

	// Limit caps how many rows a single sweep touches. Zero means the
	// handler's default batch size.
	Limit int
}

// ExpireEnrollmentsResult contains the sweep outcome.
type ExpireEnrollmentsResult struct {
	// Expired is how many enrollments were transitioned.
	Expired int

	// Failed is how many rows could not be transitioned.
	Failed int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

const defaultExpireBatchSize = 500

// ExpireEnrollmentsHandler handles the ExpireEnrollmentsCommand.
type ExpireEnrollmentsHandler struct {
	enrollmentRepo  enrollment.Repository
	enrollmentCache enrollment.Cache
	eventPublisher  shared.EventPublisher
}

// NewExpireEnrollmentsHandler creates a new ExpireEnrollmentsHandler.
func NewExpireEnrollmentsHandler(
	enrollmentRepo enrollment.Repository,
	enrollmentCache enrollment.Cache,
	eventPublisher shared.EventPublisher,
) *ExpireEnrollmentsHandler {
	return &ExpireEnrollmentsHandler{
		enrollmentRepo:  enrollmentRepo,
		enrollmentCache: enrollmentCache,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes one expiry sweep. Individual row failures do not abort the
// batch; they are counted and the sweep moves on.
func (h *ExpireEnrollmentsHandler) Handle(ctx context.Context, cmd ExpireEnrollmentsCommand) (*ExpireEnrollmentsResult, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	limit := cmd.Limit
	if limit <= 0 {
		limit = defaultExpireBatchSize
	}

	candidates, err := h.enrollmentRepo.ListExpirable(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("expire_enrollments: failed to list candidates: %w", err)
	}

	result := &ExpireEnrollmentsResult{}
	for _, enr := range candidates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := h.expireOne(ctx, enr, now); err != nil {
			result.Failed++
			continue
		}
		result.Expired++
	}

	return result, nil
}

// expireOne closes a single enrollment and emits the expiry event.
func (h *ExpireEnrollmentsHandler) expireOne(ctx context.Context, enr *enrollment.Enrollment, now time.Time) error {
	if err := enr.Expire(); err != nil {
		// The row changed state between listing and sweeping.
		return err
	}

	if err := h.enrollmentRepo.Update(ctx, enr); err != nil {
		return fmt.Errorf("expire_enrollments: failed to update %s: %w", enr.ID, err)
	}

	_ = h.enrollmentCache.Invalidate(ctx, enr.ID, enr.LearnerID, enr.CourseID)
	_ = h.eventPublisher.Publish(shared.NewEnrollmentExpiredEvent(enr.ID, enr.LearnerID, enr.CourseID, now))

	return nil
}
