package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE LESSON COMMAND
// Explicitly marks a lesson as completed and runs the completion cascade:
// when the last published lesson of the course is done, the enrollment flips
// to completed. Completion is never inferred from a percentage reaching 100.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonCommand marks one lesson as completed for a learner.
type CompleteLessonCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// LessonID is the lesson being completed.
	LessonID string

	// TimeSpentSeconds is an optional final watch-time increment recorded
	// together with the completion.
	TimeSpentSeconds int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CompleteLessonCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("complete_lesson: learner_id is required")
	}
	if c.LessonID == "" {
		return errors.New("complete_lesson: lesson_id is required")
	}
	if c.TimeSpentSeconds < 0 {
		return shared.ErrNegativeTimeSpent
	}
	return nil
}

// CompleteLessonResult contains the result of a lesson completion.
type CompleteLessonResult struct {
	// Progress is the stored progress row after completion.
	Progress *progress.Progress

	// CourseCompleted is true when this completion finished the whole course
	// and the enrollment transitioned to completed.
	CourseCompleted bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonHandler handles the CompleteLessonCommand.
type CompleteLessonHandler struct {
	catalogRepo     catalog.Repository
	enrollmentRepo  enrollment.Repository
	progressRepo    progress.Repository
	progressCache   progress.Cache
	enrollmentCache enrollment.Cache
	eventPublisher  shared.EventPublisher
}

// NewCompleteLessonHandler creates a new CompleteLessonHandler.
func NewCompleteLessonHandler(
	catalogRepo catalog.Repository,
	enrollmentRepo enrollment.Repository,
	progressRepo progress.Repository,
	progressCache progress.Cache,
	enrollmentCache enrollment.Cache,
	eventPublisher shared.EventPublisher,
) *CompleteLessonHandler {
	return &CompleteLessonHandler{
		catalogRepo:     catalogRepo,
		enrollmentRepo:  enrollmentRepo,
		progressRepo:    progressRepo,
		progressCache:   progressCache,
		enrollmentCache: enrollmentCache,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the complete lesson command.
//
// Preconditions mirror RecordProgress: the lesson must exist, be published,
// and the learner must hold an active enrollment in its course. A repeated
// completion of the same lesson is a conflict (shared.ErrLessonAlreadyCompleted).
func (h *CompleteLessonHandler) Handle(ctx context.Context, cmd CompleteLessonCommand) (*CompleteLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_lesson: validation failed: %w", err)
	}

	lesson, err := h.catalogRepo.GetLesson(ctx, cmd.LessonID)
	if err != nil {
		return nil, err
	}

	if !lesson.IsPublished {
		return nil, shared.ErrLessonNotPublished
	}

	enr, err := h.enrollmentRepo.GetByLearnerAndCourse(ctx, cmd.LearnerID, lesson.CourseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrEnrollmentNotActive
		}
		return nil, fmt.Errorf("complete_lesson: failed to look up enrollment: %w", err)
	}
	if !enr.IsActive() {
		return nil, shared.ErrEnrollmentNotActive
	}

	stored, err := h.completeProgress(ctx, cmd, lesson)
	if err != nil {
		return nil, err
	}

	_ = h.progressCache.InvalidateLesson(ctx, cmd.LearnerID, cmd.LessonID)
	_ = h.progressCache.InvalidateCourseSummary(ctx, cmd.LearnerID, lesson.CourseID)

	courseCompleted, err := h.cascade(ctx, enr, cmd.CorrelationID)
	if err != nil {
		return nil, err
	}

	event := shared.NewLessonCompletedEvent(
		cmd.LearnerID, cmd.LessonID, lesson.CourseID,
		stored.TimeSpentSeconds, courseCompleted,
	)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	_ = h.eventPublisher.Publish(event)

	return &CompleteLessonResult{Progress: stored, CourseCompleted: courseCompleted}, nil
}

// completeProgress marks the progress row completed and persists it. A row is
// created on the fly when the learner completes a lesson they never reported
// incremental progress for.
func (h *CompleteLessonHandler) completeProgress(ctx context.Context, cmd CompleteLessonCommand, lesson *catalog.Lesson) (*progress.Progress, error) {
	p, err := h.progressRepo.GetByLearnerAndLesson(ctx, cmd.LearnerID, cmd.LessonID)
	switch {
	case err == nil:
	case shared.IsNotFound(err):
		p, err = progress.NewProgress(uuid.New().String(), cmd.LearnerID, cmd.LessonID, lesson.CourseID)
		if err != nil {
			return nil, fmt.Errorf("complete_lesson: %w", err)
		}
	default:
		return nil, fmt.Errorf("complete_lesson: failed to load progress: %w", err)
	}

	if err := p.MarkCompleted(time.Now().UTC()); err != nil {
		if errors.Is(err, progress.ErrAlreadyCompleted) {
			return nil, shared.ErrLessonAlreadyCompleted
		}
		return nil, err
	}

	stored, err := h.progressRepo.Upsert(ctx, p, cmd.TimeSpentSeconds)
	if err != nil {
		return nil, fmt.Errorf("complete_lesson: failed to persist completion: %w", err)
	}
	return stored, nil
}

// cascade checks whether the course is now fully completed and, if so, closes
// the enrollment. The enrollment transition goes through a guarded update
// that only fires while the row is still active, so two racing lesson
// completions produce exactly one CourseCompletedEvent.
func (h *CompleteLessonHandler) cascade(ctx context.Context, enr *enrollment.Enrollment, correlationID string) (bool, error) {
	total, err := h.catalogRepo.CountPublishedLessons(ctx, enr.CourseID)
	if err != nil {
		return false, fmt.Errorf("complete_lesson: failed to count lessons: %w", err)
	}

	// A course with no published lessons never completes.
	if total == 0 {
		return false, nil
	}

	completed, err := h.progressRepo.CountCompletedByCourse(ctx, enr.LearnerID, enr.CourseID)
	if err != nil {
		return false, fmt.Errorf("complete_lesson: failed to count completed lessons: %w", err)
	}

	if completed < total {
		return false, nil
	}

	now := time.Now().UTC()
	transitioned, err := h.enrollmentRepo.CompleteIfActive(ctx, enr.ID, now)
	if err != nil {
		return false, fmt.Errorf("complete_lesson: failed to complete enrollment: %w", err)
	}
	if !transitioned {
		// Another writer already closed the enrollment.
		return true, nil
	}

	_ = h.enrollmentCache.Invalidate(ctx, enr.ID, enr.LearnerID, enr.CourseID)

	event := shared.NewCourseCompletedEvent(enr.ID, enr.LearnerID, enr.CourseID, completed, now)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(correlationID)
	_ = h.eventPublisher.Publish(event)

	return true, nil
}
