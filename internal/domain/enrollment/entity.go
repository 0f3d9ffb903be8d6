package enrollment

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status defines the lifecycle state of an enrollment.
type Status string

const (
	// StatusActive - the learner is admitted and learning.
	StatusActive Status = "active"
	// StatusCompleted - every published lesson of the course is completed.
	StatusCompleted Status = "completed"
	// StatusCancelled - the enrollment was cancelled administratively.
	StatusCancelled Status = "cancelled"
	// StatusExpired - the enrollment passed its expiry date.
	StatusExpired Status = "expired"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// BlocksEnrollment reports whether an existing row in this status rejects a
// new Enroll request with a conflict ("already enrolled").
func (s Status) BlocksEnrollment() bool {
	return s == StatusActive || s == StatusCompleted
}

// AllowsReenrollment reports whether the row can be reactivated in place.
func (s Status) AllowsReenrollment() bool {
	return s == StatusCancelled || s == StatusExpired
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidStatus - unknown enrollment status.
	ErrInvalidStatus = errors.New("invalid enrollment status")

	// ErrNotReenrollable - the row is not in a state that allows reactivation.
	ErrNotReenrollable = errors.New("enrollment cannot be reactivated from its current status")

	// ErrNotActive - a transition required the enrollment to be active.
	ErrNotActive = errors.New("enrollment is not active")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment represents a learner's membership in a course. The
// (LearnerID, CourseID) pair is unique; the row survives cancellation and
// expiry and is reused on re-enrollment.
type Enrollment struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// LearnerID identifies the learner.
	LearnerID string

	// CourseID identifies the course.
	CourseID string

	// Status is the current lifecycle state.
	Status Status

	// EnrolledAt is when the learner was (last) admitted.
	EnrolledAt time.Time

	// ExpiresAt is when the enrollment lapses (nil = never).
	ExpiresAt *time.Time

	// CompletedAt is set exactly when Status becomes completed, cleared on
	// re-enrollment. Non-nil iff Status == StatusCompleted.
	CompletedAt *time.Time

	// CreatedAt is when the row was first created.
	CreatedAt time.Time

	// UpdatedAt is when the row was last modified.
	UpdatedAt time.Time
}

// NewEnrollmentParams contains the parameters for creating an enrollment.
type NewEnrollmentParams struct {
	ID        string
	LearnerID string
	CourseID  string
	ExpiresAt *time.Time
}

// NewEnrollment creates a new active enrollment with validation.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if params.ID == "" {
		return nil, errors.New("enrollment id is required")
	}
	if params.LearnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if params.CourseID == "" {
		return nil, errors.New("course id is required")
	}

	now := time.Now().UTC()

	return &Enrollment{
		ID:         params.ID,
		LearnerID:  params.LearnerID,
		CourseID:   params.CourseID,
		Status:     StatusActive,
		EnrolledAt: now,
		ExpiresAt:  params.ExpiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (State Machine)
// ══════════════════════════════════════════════════════════════════════════════

// IsActive reports whether the learner currently holds an active admission.
func (e *Enrollment) IsActive() bool {
	return e.Status == StatusActive
}

// IsCompleted reports whether the course was finished under this enrollment.
func (e *Enrollment) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// Reactivate reuses the existing row for a re-enrollment cycle.
// Only cancelled and expired enrollments can be reactivated; the caller has
// already verified course admissibility and prerequisites.
func (e *Enrollment) Reactivate(expiresAt *time.Time) error {
	if !e.Status.AllowsReenrollment() {
		return ErrNotReenrollable
	}

	now := time.Now().UTC()
	e.Status = StatusActive
	e.EnrolledAt = now
	e.ExpiresAt = expiresAt
	e.CompletedAt = nil
	e.UpdatedAt = now
	return nil
}

// Complete transitions the enrollment to completed. Only the completion
// cascade calls this. Returns true when the transition happened and false
// when the enrollment was already completed (racing cascades converge on a
// no-op here). Any other status is an error.
func (e *Enrollment) Complete(at time.Time) (bool, error) {
	switch e.Status {
	case StatusCompleted:
		return false, nil
	case StatusActive:
		completedAt := at.UTC()
		e.Status = StatusCompleted
		e.CompletedAt = &completedAt
		e.UpdatedAt = completedAt
		return true, nil
	default:
		return false, fmt.Errorf("%w: cannot complete from %q", ErrNotActive, e.Status)
	}
}

// Cancel transitions an active enrollment to cancelled.
func (e *Enrollment) Cancel() error {
	if e.Status != StatusActive {
		return fmt.Errorf("%w: cannot cancel from %q", ErrNotActive, e.Status)
	}

	e.Status = StatusCancelled
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Expire transitions an active enrollment to expired.
func (e *Enrollment) Expire() error {
	if e.Status != StatusActive {
		return fmt.Errorf("%w: cannot expire from %q", ErrNotActive, e.Status)
	}

	e.Status = StatusExpired
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// IsExpiredBy reports whether the enrollment's expiry date has passed.
func (e *Enrollment) IsExpiredBy(now time.Time) bool {
	return e.Status == StatusActive && e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// String returns a string representation for logging.
func (e *Enrollment) String() string {
	return fmt.Sprintf(
		"Enrollment{ID: %s, Learner: %s, Course: %s, Status: %s}",
		e.ID, e.LearnerID, e.CourseID, e.Status,
	)
}

// Clone creates a copy of the enrollment.
func (e *Enrollment) Clone() *Enrollment {
	if e == nil {
		return nil
	}

	clone := *e
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		clone.ExpiresAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
