package enrollment

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the contract for enrollment storage.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the storage operations for enrollments.
type Repository interface {
	// Create inserts a new enrollment row.
	// Returns shared.ErrAlreadyEnrolled when a row for the
	// (learner, course) pair already exists.
	Create(ctx context.Context, e *Enrollment) error

	// GetByID returns an enrollment by internal ID.
	// Returns shared.ErrEnrollmentNotFound if absent.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetByLearnerAndCourse returns the enrollment for the natural key.
	// Returns shared.ErrEnrollmentNotFound if absent.
	GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*Enrollment, error)

	// Update persists status/timestamp changes of an existing row.
	// Returns shared.ErrEnrollmentNotFound if absent.
	Update(ctx context.Context, e *Enrollment) error

	// ListByLearner returns all enrollments of a learner, newest first.
	ListByLearner(ctx context.Context, learnerID string) ([]*Enrollment, error)

	// HasCompleted reports whether the learner holds a completed enrollment
	// for the given course. Used for prerequisite gating.
	HasCompleted(ctx context.Context, learnerID, courseID string) (bool, error)

	// CompleteIfActive marks an enrollment completed only when it is still
	// active, in a single guarded statement. Returns true when the transition
	// happened and false when another writer got there first or the row left
	// the active state. The completion cascade relies on this guard so that
	// concurrent lesson completions produce exactly one transition.
	CompleteIfActive(ctx context.Context, id string, at time.Time) (bool, error)

	// ListExpirable returns active enrollments whose expiry date is before
	// the given instant. Used by the expiry sweep.
	ListExpirable(ctx context.Context, before time.Time, limit int) ([]*Enrollment, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Cache entries for enrollments are written by reads (cache-aside) and only
// ever deleted by writes; mutations never update a cached value in place.
// ══════════════════════════════════════════════════════════════════════════════

// Cache defines the enrollment cache operations.
type Cache interface {
	// GetByID returns a cached enrollment by ID, or a cache-miss error.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetByLearnerAndCourse returns a cached enrollment by natural key.
	GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*Enrollment, error)

	// Set caches an enrollment under both its ID key and its lookup key.
	Set(ctx context.Context, e *Enrollment, ttl time.Duration) error

	// Invalidate removes the ID key and the lookup key for an enrollment.
	Invalidate(ctx context.Context, id, learnerID, courseID string) error
}

// ErrCacheDisabled is returned by NoopCache reads, making every lookup a miss.
var ErrCacheDisabled = errors.New("enrollment cache disabled")

// NoopCache is a Cache that stores nothing. Used when Redis is disabled;
// every read misses and falls through to the repository.
type NoopCache struct{}

func (NoopCache) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	return nil, ErrCacheDisabled
}

func (NoopCache) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*Enrollment, error) {
	return nil, ErrCacheDisabled
}

func (NoopCache) Set(ctx context.Context, e *Enrollment, ttl time.Duration) error {
	return nil
}

func (NoopCache) Invalidate(ctx context.Context, id, learnerID, courseID string) error {
	return nil
}
