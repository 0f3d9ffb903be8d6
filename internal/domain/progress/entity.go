// Package progress contains the domain model for a learner's consumption
// state of individual lessons, plus the course-level read model the cache and
// queries share.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAlreadyCompleted - completed never transitions back to false, and
	// re-completing is rejected as a duplicate.
	ErrAlreadyCompleted = errors.New("lesson progress is already completed")

	// ErrPercentageOutOfRange - percentage must stay within [0, 100].
	ErrPercentageOutOfRange = errors.New("progress percentage must be between 0 and 100")

	// ErrNegativeTimeSpent - accumulated watch time only ever grows.
	ErrNegativeTimeSpent = errors.New("time spent increment cannot be negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// Progress represents a learner's consumption state of one lesson. The
// (LearnerID, LessonID) pair is unique, enforced by upsert.
type Progress struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string `json:"id"`

	// LearnerID identifies the learner.
	LearnerID string `json:"learner_id"`

	// LessonID identifies the lesson.
	LessonID string `json:"lesson_id"`

	// CourseID denormalizes the owning course for aggregate queries.
	CourseID string `json:"course_id"`

	// ProgressPercentage is the absolute completion percentage [0, 100].
	ProgressPercentage int `json:"progress_percentage"`

	// Completed marks explicit lesson completion. Never reverts to false.
	Completed bool `json:"completed"`

	// TimeSpentSeconds accumulates additively across updates; a client can
	// never reset it with an absolute value.
	TimeSpentSeconds int `json:"time_spent_seconds"`

	// LastPositionSeconds is the absolute playhead (video lessons only).
	LastPositionSeconds int `json:"last_position_seconds"`

	// CompletedAt is set exactly when Completed transitions false→true.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// CreatedAt is when the row was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the row was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgress creates an empty progress record for a (learner, lesson) pair.
func NewProgress(id, learnerID, lessonID, courseID string) (*Progress, error) {
	if id == "" {
		return nil, errors.New("progress id is required")
	}
	if learnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if lessonID == "" {
		return nil, errors.New("lesson id is required")
	}
	if courseID == "" {
		return nil, errors.New("course id is required")
	}

	now := time.Now().UTC()

	return &Progress{
		ID:        id,
		LearnerID: learnerID,
		LessonID:  lessonID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// SetPercentage applies an absolute percentage value.
func (p *Progress) SetPercentage(pct int) error {
	if pct < 0 || pct > 100 {
		return ErrPercentageOutOfRange
	}

	p.ProgressPercentage = pct
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AddTimeSpent accumulates watch time. The increment is additive; absolute
// values from clients are never accepted, so a stale client cannot erase
// accumulated time.
func (p *Progress) AddTimeSpent(seconds int) error {
	if seconds < 0 {
		return ErrNegativeTimeSpent
	}

	p.TimeSpentSeconds += seconds
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPosition records the absolute playhead position of a video lesson.
func (p *Progress) SetPosition(seconds int) {
	p.LastPositionSeconds = seconds
	p.UpdatedAt = time.Now().UTC()
}

// MarkCompleted transitions the record to completed. Completion is an
// explicit operation, never inferred from the percentage reaching 100.
// Returns ErrAlreadyCompleted on a duplicate completion.
func (p *Progress) MarkCompleted(at time.Time) error {
	if p.Completed {
		return ErrAlreadyCompleted
	}

	completedAt := at.UTC()
	p.Completed = true
	p.ProgressPercentage = 100
	p.CompletedAt = &completedAt
	p.UpdatedAt = completedAt
	return nil
}

// String returns a string representation for logging.
func (p *Progress) String() string {
	return fmt.Sprintf(
		"Progress{Learner: %s, Lesson: %s, Pct: %d, Completed: %t, TimeSpent: %ds}",
		p.LearnerID, p.LessonID, p.ProgressPercentage, p.Completed, p.TimeSpentSeconds,
	)
}

// Clone creates a copy of the progress record.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}

	clone := *p
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// ══════════════════════════════════════════════════════════════════════════════
// PERCENTAGE DERIVATION
// ══════════════════════════════════════════════════════════════════════════════

// DerivePercentage computes a completion percentage from an absolute playhead
// position and the lesson duration. The result is rounded and clamped to
// [0, 100]; a zero or unknown duration yields 0.
func DerivePercentage(positionSeconds, durationSeconds int) int {
	if durationSeconds <= 0 || positionSeconds <= 0 {
		return 0
	}

	pct := int(math.Round(float64(positionSeconds) / float64(durationSeconds) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE SUMMARY (read model)
// ══════════════════════════════════════════════════════════════════════════════

// CourseSummary aggregates a learner's progress across one course. It is the
// typed schema stored under the per-course-progress cache key family.
type CourseSummary struct {
	// LearnerID identifies the learner.
	LearnerID string `json:"learner_id"`

	// CourseID identifies the course.
	CourseID string `json:"course_id"`

	// TotalLessons is the number of published lessons in the course.
	TotalLessons int `json:"total_lessons"`

	// CompletedLessons counts lessons with a completed progress row.
	CompletedLessons int `json:"completed_lessons"`

	// PercentComplete is CompletedLessons/TotalLessons, rounded.
	PercentComplete int `json:"percent_complete"`

	// TotalTimeSpentSeconds sums accumulated watch time for the course.
	TotalTimeSpentSeconds int `json:"total_time_spent_seconds"`

	// EnrollmentStatus mirrors the learner's enrollment state for the course.
	EnrollmentStatus string `json:"enrollment_status"`

	// GeneratedAt is when the summary was computed.
	GeneratedAt time.Time `json:"generated_at"`
}

// IsComplete reports whether every published lesson is finished. A course
// with zero published lessons is never considered complete - a course still
// loading lessons must not mark learners as having finished it.
func (s *CourseSummary) IsComplete() bool {
	return s.TotalLessons > 0 && s.CompletedLessons >= s.TotalLessons
}
