package learner

import (
	"context"
)

// Repository defines the storage operations for learner accounts.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create inserts a new learner.
	// Returns shared.ErrLearnerAlreadyExists when the email is taken.
	Create(ctx context.Context, l *Learner) error

	// GetByID returns a learner by internal ID.
	// Returns shared.ErrLearnerNotFound if absent.
	GetByID(ctx context.Context, id string) (*Learner, error)

	// GetByEmail returns a learner by email.
	// Returns shared.ErrLearnerNotFound if absent.
	GetByEmail(ctx context.Context, email Email) (*Learner, error)

	// Exists reports whether a learner with the given ID exists.
	Exists(ctx context.Context, id string) (bool, error)
}
