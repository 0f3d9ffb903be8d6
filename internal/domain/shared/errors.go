// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "enrollment", "progress", "catalog"
	Op      string // Operation that failed, e.g., "Enroll", "Complete"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Catalog domain errors
var (
	ErrCourseNotFound     = NewDomainError("catalog", "FindCourse", ErrNotFound, "course not found")
	ErrLessonNotFound     = NewDomainError("catalog", "FindLesson", ErrNotFound, "lesson not found")
	ErrCourseNotPublished = NewDomainError("catalog", "CheckStatus", ErrInvalidState, "course is not open for enrollment")
	ErrLessonNotPublished = NewDomainError("catalog", "CheckStatus", ErrInvalidState, "lesson is not published")
	ErrLessonNotVideo     = NewDomainError("catalog", "CheckType", ErrInvalidState, "lesson is not a video lesson")
)

// Learner domain errors
var (
	ErrLearnerNotFound      = NewDomainError("learner", "Find", ErrNotFound, "learner not found")
	ErrLearnerAlreadyExists = NewDomainError("learner", "Register", ErrAlreadyExists, "email already registered")
	ErrInvalidEmail         = NewDomainError("learner", "Validate", ErrInvalidInput, "invalid email address")
	ErrWeakPassword         = NewDomainError("learner", "Validate", ErrInvalidInput, "password does not meet requirements")
)

// Enrollment domain errors
var (
	ErrEnrollmentNotFound  = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
	ErrAlreadyEnrolled     = NewDomainError("enrollment", "Enroll", ErrAlreadyExists, "learner is already enrolled in this course")
	ErrPrerequisitesUnmet  = NewDomainError("enrollment", "Enroll", ErrValidation, "prerequisite courses are not completed")
	ErrEnrollmentNotActive = NewDomainError("enrollment", "CheckStatus", ErrForbidden, "learner has no active enrollment in this course")
	ErrInvalidTransition   = NewDomainError("enrollment", "Transition", ErrStateTransition, "invalid enrollment status transition")
)

// Progress domain errors
var (
	ErrProgressNotFound       = NewDomainError("progress", "Find", ErrNotFound, "progress record not found")
	ErrLessonAlreadyCompleted = NewDomainError("progress", "Complete", ErrAlreadyExists, "lesson is already completed")
	ErrInvalidPercentage      = NewDomainError("progress", "Validate", ErrValueOutOfRange, "progress percentage must be between 0 and 100")
	ErrNegativeTimeSpent      = NewDomainError("progress", "Validate", ErrValueOutOfRange, "time spent increment cannot be negative")
	ErrNegativePosition       = NewDomainError("progress", "Validate", ErrValueOutOfRange, "playback position cannot be negative")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a duplicate/conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidState checks if the error is an invalid-state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrStateTransition)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}
