package catalog

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The catalog is owned by an external module; this core only needs lookups.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the read-only catalog operations this core consumes.
type Repository interface {
	// GetCourse returns a course by ID, prerequisites included.
	// Returns shared.ErrCourseNotFound if the course does not exist.
	GetCourse(ctx context.Context, courseID string) (*Course, error)

	// GetLesson returns a lesson by ID.
	// Returns shared.ErrLessonNotFound if the lesson does not exist.
	GetLesson(ctx context.Context, lessonID string) (*Lesson, error)

	// ListPublishedLessons returns the published lessons of a course
	// ordered by their order index. An empty slice means the course has no
	// published lessons yet.
	ListPublishedLessons(ctx context.Context, courseID string) ([]*Lesson, error)

	// CountPublishedLessons returns how many published lessons a course has.
	CountPublishedLessons(ctx context.Context, courseID string) (int, error)
}
