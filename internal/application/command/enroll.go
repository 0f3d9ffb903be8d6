// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL COMMAND
// Admits a learner into a course, or reactivates a cancelled/expired
// enrollment in place. The (learner, course) pair is a natural key: the row
// is reused across re-enrollment cycles, never duplicated.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollCommand contains the data needed to enroll a learner.
type EnrollCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// CourseID is the course to enroll into.
	CourseID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EnrollCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("enroll: learner_id is required")
	}
	if c.CourseID == "" {
		return errors.New("enroll: course_id is required")
	}
	return nil
}

// EnrollResult contains the result of an enrollment.
type EnrollResult struct {
	// Enrollment is the created or reactivated enrollment.
	Enrollment *enrollment.Enrollment

	// Reenrolled is true when an existing row was reactivated.
	Reenrolled bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollHandler handles the EnrollCommand.
type EnrollHandler struct {
	catalogRepo     catalog.Repository
	enrollmentRepo  enrollment.Repository
	enrollmentCache enrollment.Cache
	eventPublisher  shared.EventPublisher

	// Configuration
	enrollmentDuration time.Duration // 0 = enrollments never expire
}

// EnrollHandlerConfig contains configuration for the handler.
type EnrollHandlerConfig struct {
	// EnrollmentDuration is how long an admission lasts (0 = no expiry).
	EnrollmentDuration time.Duration
}

// NewEnrollHandler creates a new EnrollHandler.
func NewEnrollHandler(
	catalogRepo catalog.Repository,
	enrollmentRepo enrollment.Repository,
	enrollmentCache enrollment.Cache,
	eventPublisher shared.EventPublisher,
	config EnrollHandlerConfig,
) *EnrollHandler {
	return &EnrollHandler{
		catalogRepo:        catalogRepo,
		enrollmentRepo:     enrollmentRepo,
		enrollmentCache:    enrollmentCache,
		eventPublisher:     eventPublisher,
		enrollmentDuration: config.EnrollmentDuration,
	}
}

// Handle executes the enroll command.
//
// Preconditions, checked before any mutation:
//  1. The course exists (shared.ErrCourseNotFound).
//  2. The course is open for enrollment (shared.ErrCourseNotPublished).
//  3. No active or completed enrollment exists for the pair
//     (shared.ErrAlreadyEnrolled).
//  4. Every prerequisite course has a completed enrollment for this learner
//     (shared.ErrPrerequisitesUnmet, naming the unmet courses).
//
// An already-enrolled learner gets the conflict even when the course picked
// up prerequisites they no longer meet.
func (h *EnrollHandler) Handle(ctx context.Context, cmd EnrollCommand) (*EnrollResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll: validation failed: %w", err)
	}

	course, err := h.catalogRepo.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	if !course.IsAdmissible() {
		return nil, shared.ErrCourseNotPublished
	}

	existing, err := h.enrollmentRepo.GetByLearnerAndCourse(ctx, cmd.LearnerID, cmd.CourseID)
	switch {
	case err == nil:
		if existing.Status.BlocksEnrollment() {
			return nil, shared.ErrAlreadyEnrolled
		}
	case shared.IsNotFound(err):
		existing = nil
	default:
		return nil, fmt.Errorf("enroll: failed to look up enrollment: %w", err)
	}

	if err := h.checkPrerequisites(ctx, cmd.LearnerID, course); err != nil {
		return nil, err
	}

	if existing != nil {
		return h.reenroll(ctx, existing, cmd)
	}
	return h.enrollNew(ctx, cmd)
}

// checkPrerequisites verifies that every prerequisite course is completed.
func (h *EnrollHandler) checkPrerequisites(ctx context.Context, learnerID string, course *catalog.Course) error {
	if !course.HasPrerequisites() {
		return nil
	}

	var unmet []string
	for _, prereqID := range course.PrerequisiteIDs {
		completed, err := h.enrollmentRepo.HasCompleted(ctx, learnerID, prereqID)
		if err != nil {
			return fmt.Errorf("enroll: failed to check prerequisite %s: %w", prereqID, err)
		}
		if !completed {
			unmet = append(unmet, prereqID)
		}
	}

	if len(unmet) > 0 {
		return shared.WrapError(
			"enrollment", "Enroll", shared.ErrValidation,
			fmt.Sprintf("prerequisite courses not completed: %s", strings.Join(unmet, ", ")),
			shared.ErrPrerequisitesUnmet,
		)
	}
	return nil
}

// enrollNew creates a fresh enrollment row.
func (h *EnrollHandler) enrollNew(ctx context.Context, cmd EnrollCommand) (*EnrollResult, error) {
	enr, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        uuid.New().String(),
		LearnerID: cmd.LearnerID,
		CourseID:  cmd.CourseID,
		ExpiresAt: h.expiryFor(time.Now().UTC()),
	})
	if err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}

	if err := h.enrollmentRepo.Create(ctx, enr); err != nil {
		// A concurrent enroll for the same pair surfaces here as a conflict.
		return nil, err
	}

	h.finish(ctx, enr, false, cmd.CorrelationID)
	return &EnrollResult{Enrollment: enr, Reenrolled: false}, nil
}

// reenroll reactivates an existing cancelled or expired row.
func (h *EnrollHandler) reenroll(ctx context.Context, existing *enrollment.Enrollment, cmd EnrollCommand) (*EnrollResult, error) {
	if err := existing.Reactivate(h.expiryFor(time.Now().UTC())); err != nil {
		return nil, shared.WrapError("enrollment", "Enroll", shared.ErrStateTransition, "cannot reactivate enrollment", err)
	}

	if err := h.enrollmentRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("enroll: failed to reactivate enrollment: %w", err)
	}

	h.finish(ctx, existing, true, cmd.CorrelationID)
	return &EnrollResult{Enrollment: existing, Reenrolled: true}, nil
}

// finish invalidates the enrollment cache entries and publishes the domain
// event. Cache errors are not surfaced: a stale entry is bounded by its TTL.
func (h *EnrollHandler) finish(ctx context.Context, enr *enrollment.Enrollment, reenrolled bool, correlationID string) {
	_ = h.enrollmentCache.Invalidate(ctx, enr.ID, enr.LearnerID, enr.CourseID)

	event := shared.NewLearnerEnrolledEvent(enr.ID, enr.LearnerID, enr.CourseID, reenrolled)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(correlationID)
	_ = h.eventPublisher.Publish(event)
}

// expiryFor computes the expiry timestamp for a fresh admission.
func (h *EnrollHandler) expiryFor(now time.Time) *time.Time {
	if h.enrollmentDuration <= 0 {
		return nil
	}
	t := now.Add(h.enrollmentDuration)
	return &t
}
