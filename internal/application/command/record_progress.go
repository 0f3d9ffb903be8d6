package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROGRESS COMMAND
// Applies an incremental progress/position update to a (learner, lesson)
// progress row. Completion is a separate, explicit operation (CompleteLesson):
// a learner can scrub a video to 100% without the lesson being declared done,
// which keeps noisy position events from triggering the completion cascade.
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressCommand contains one progress update.
type RecordProgressCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// LessonID is the lesson being consumed.
	LessonID string

	// ProgressPercentage is an optional absolute percentage [0, 100].
	ProgressPercentage *int

	// TimeSpentSeconds is an increment added to the accumulated total.
	// Absolute values are never accepted.
	TimeSpentSeconds int

	// LastPositionSeconds is an optional absolute playhead value
	// (video lessons only).
	LastPositionSeconds *int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordProgressCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("record_progress: learner_id is required")
	}
	if c.LessonID == "" {
		return errors.New("record_progress: lesson_id is required")
	}
	if c.ProgressPercentage != nil && (*c.ProgressPercentage < 0 || *c.ProgressPercentage > 100) {
		return shared.ErrInvalidPercentage
	}
	if c.TimeSpentSeconds < 0 {
		return shared.ErrNegativeTimeSpent
	}
	if c.LastPositionSeconds != nil && *c.LastPositionSeconds < 0 {
		return shared.ErrNegativePosition
	}
	return nil
}

// RecordProgressResult contains the stored progress row after the update.
type RecordProgressResult struct {
	Progress *progress.Progress
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressHandler handles the RecordProgressCommand.
type RecordProgressHandler struct {
	catalogRepo    catalog.Repository
	enrollmentRepo enrollment.Repository
	progressRepo   progress.Repository
	progressCache  progress.Cache
}

// NewRecordProgressHandler creates a new RecordProgressHandler.
func NewRecordProgressHandler(
	catalogRepo catalog.Repository,
	enrollmentRepo enrollment.Repository,
	progressRepo progress.Repository,
	progressCache progress.Cache,
) *RecordProgressHandler {
	return &RecordProgressHandler{
		catalogRepo:    catalogRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		progressCache:  progressCache,
	}
}

// Handle executes the record progress command.
//
// Preconditions, checked in order before any mutation:
//  1. The lesson exists (shared.ErrLessonNotFound).
//  2. The lesson is published (shared.ErrLessonNotPublished).
//  3. The learner holds an active enrollment in the lesson's course
//     (shared.ErrEnrollmentNotActive).
//  4. A playhead position is only accepted for video lessons
//     (shared.ErrLessonNotVideo).
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_progress: validation failed: %w", err)
	}

	lesson, err := h.catalogRepo.GetLesson(ctx, cmd.LessonID)
	if err != nil {
		return nil, err
	}

	if !lesson.IsPublished {
		return nil, shared.ErrLessonNotPublished
	}

	if err := requireActiveEnrollment(ctx, h.enrollmentRepo, cmd.LearnerID, lesson.CourseID); err != nil {
		return nil, err
	}

	if cmd.LastPositionSeconds != nil && !lesson.IsVideo() {
		return nil, shared.ErrLessonNotVideo
	}

	p, err := h.loadOrCreate(ctx, cmd, lesson)
	if err != nil {
		return nil, err
	}

	if err := h.applyDelta(p, cmd, lesson); err != nil {
		return nil, err
	}

	// The time increment is applied atomically inside the upsert statement;
	// concurrent updates to the same row never lose accumulated time.
	stored, err := h.progressRepo.Upsert(ctx, p, cmd.TimeSpentSeconds)
	if err != nil {
		return nil, fmt.Errorf("record_progress: failed to persist progress: %w", err)
	}

	_ = h.progressCache.InvalidateLesson(ctx, cmd.LearnerID, cmd.LessonID)
	_ = h.progressCache.InvalidateCourseSummary(ctx, cmd.LearnerID, lesson.CourseID)

	return &RecordProgressResult{Progress: stored}, nil
}

// loadOrCreate fetches the existing progress row or prepares a fresh one.
func (h *RecordProgressHandler) loadOrCreate(ctx context.Context, cmd RecordProgressCommand, lesson *catalog.Lesson) (*progress.Progress, error) {
	existing, err := h.progressRepo.GetByLearnerAndLesson(ctx, cmd.LearnerID, cmd.LessonID)
	switch {
	case err == nil:
		return existing, nil
	case shared.IsNotFound(err):
		return progress.NewProgress(uuid.New().String(), cmd.LearnerID, cmd.LessonID, lesson.CourseID)
	default:
		return nil, fmt.Errorf("record_progress: failed to load progress: %w", err)
	}
}

// applyDelta applies percentage and position updates to the row.
// For video lessons a position update without an explicit percentage derives
// one from the playhead, clamped to 100 and guarded against zero duration.
func (h *RecordProgressHandler) applyDelta(p *progress.Progress, cmd RecordProgressCommand, lesson *catalog.Lesson) error {
	switch {
	case cmd.ProgressPercentage != nil:
		if err := p.SetPercentage(*cmd.ProgressPercentage); err != nil {
			return err
		}
	case cmd.LastPositionSeconds != nil && lesson.IsVideo():
		derived := progress.DerivePercentage(*cmd.LastPositionSeconds, lesson.DurationSeconds())
		if err := p.SetPercentage(derived); err != nil {
			return err
		}
	}

	if cmd.LastPositionSeconds != nil {
		p.SetPosition(*cmd.LastPositionSeconds)
	}

	return nil
}

// requireActiveEnrollment verifies the learner's admission to the course that
// owns a lesson. Shared by the progress tracker and the completion cascade.
func requireActiveEnrollment(ctx context.Context, repo enrollment.Repository, learnerID, courseID string) error {
	enr, err := repo.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.ErrEnrollmentNotActive
		}
		return fmt.Errorf("failed to look up enrollment: %w", err)
	}
	if !enr.IsActive() {
		return shared.ErrEnrollmentNotActive
	}
	return nil
}
