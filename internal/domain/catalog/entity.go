// Package catalog contains the course and lesson entities consumed by the
// enrollment and progress subsystems. The catalog itself (authoring, category
// trees, publishing workflows) is managed elsewhere; this core only reads it.
package catalog

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// CourseStatus defines the publication state of a course.
type CourseStatus string

const (
	// CourseStatusDraft - course is being authored, not visible to learners.
	CourseStatusDraft CourseStatus = "draft"
	// CourseStatusPublished - course is open for enrollment.
	CourseStatusPublished CourseStatus = "published"
	// CourseStatusArchived - course is closed to new enrollments.
	CourseStatusArchived CourseStatus = "archived"
)

// IsValid reports whether the status is a known value.
func (s CourseStatus) IsValid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusPublished, CourseStatusArchived:
		return true
	default:
		return false
	}
}

// IsAdmissible reports whether learners may enroll in a course with this status.
func (s CourseStatus) IsAdmissible() bool {
	return s == CourseStatusPublished
}

// LessonType defines the content type of a lesson.
type LessonType string

const (
	// LessonTypeVideo - video lesson with a playhead position.
	LessonTypeVideo LessonType = "video"
	// LessonTypeText - text/article lesson.
	LessonTypeText LessonType = "text"
	// LessonTypeQuiz - quiz lesson.
	LessonTypeQuiz LessonType = "quiz"
)

// IsValid reports whether the lesson type is a known value.
func (t LessonType) IsValid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeText, LessonTypeQuiz:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Course is a read-only projection of a catalog course.
type Course struct {
	// ID is the course identifier (UUID in string form).
	ID string

	// Title is the display title.
	Title string

	// InstructorID identifies the owning instructor.
	InstructorID string

	// Status is the publication state.
	Status CourseStatus

	// PrerequisiteIDs lists courses that must be completed before enrolling.
	PrerequisiteIDs []string

	// CreatedAt is when the course was created.
	CreatedAt time.Time

	// UpdatedAt is when the course was last modified.
	UpdatedAt time.Time
}

// IsAdmissible reports whether the course currently accepts enrollments.
func (c *Course) IsAdmissible() bool {
	return c.Status.IsAdmissible()
}

// HasPrerequisites reports whether the course gates enrollment on other courses.
func (c *Course) HasPrerequisites() bool {
	return len(c.PrerequisiteIDs) > 0
}

// Lesson is a read-only projection of a catalog lesson.
type Lesson struct {
	// ID is the lesson identifier.
	ID string

	// CourseID is the owning course.
	CourseID string

	// Title is the display title.
	Title string

	// Type is the content type.
	Type LessonType

	// DurationMinutes is the nominal length (video lessons; 0 otherwise).
	DurationMinutes int

	// OrderIndex is the position within the course.
	OrderIndex int

	// IsPublished controls whether learners can consume the lesson.
	IsPublished bool
}

// IsVideo reports whether the lesson carries a playhead position.
func (l *Lesson) IsVideo() bool {
	return l.Type == LessonTypeVideo
}

// DurationSeconds returns the nominal lesson length in seconds.
func (l *Lesson) DurationSeconds() int {
	return l.DurationMinutes * 60
}
