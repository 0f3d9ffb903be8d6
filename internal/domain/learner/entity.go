// Package learner contains the minimal learner account model the enrollment
// core depends on. Authentication middleware and profile management live in
// adjacent modules.
package learner

import (
	"errors"
	"strings"
	"time"
)

// Status defines the account state of a learner.
type Status string

const (
	// StatusActive - the account is usable.
	StatusActive Status = "active"
	// StatusSuspended - the account is temporarily blocked.
	StatusSuspended Status = "suspended"
	// StatusDeleted - the account was soft-deleted.
	StatusDeleted Status = "deleted"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDeleted:
		return true
	default:
		return false
	}
}

// Email represents a learner's email address.
type Email string

// IsValid performs a light sanity check; real verification happens via a
// confirmation mail outside this core.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return len(s) >= 5 && len(s) <= 254 && at > 0 && at < len(s)-3 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string form of the email.
func (e Email) String() string {
	return string(e)
}

var (
	// ErrInvalidEmail - malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidDisplayName - display name out of bounds.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")
)

// Learner represents a learner account.
type Learner struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// Email is the unique login email.
	Email Email

	// PasswordHash is the bcrypt hash of the learner's password.
	PasswordHash string

	// DisplayName is the shown name.
	DisplayName string

	// Status is the account state.
	Status Status

	// CreatedAt is when the account was created.
	CreatedAt time.Time

	// UpdatedAt is when the account was last modified.
	UpdatedAt time.Time
}

// NewLearnerParams contains the parameters for creating a learner.
type NewLearnerParams struct {
	ID           string
	Email        Email
	PasswordHash string
	DisplayName  string
}

// NewLearner creates a new active learner with validation. The password is
// hashed by the registration use-case before it reaches the domain.
func NewLearner(params NewLearnerParams) (*Learner, error) {
	if params.ID == "" {
		return nil, errors.New("learner id is required")
	}
	if !params.Email.IsValid() {
		return nil, ErrInvalidEmail
	}
	if params.PasswordHash == "" {
		return nil, errors.New("password hash is required")
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	now := time.Now().UTC()

	return &Learner{
		ID:           params.ID,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		DisplayName:  displayName,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive reports whether the account is usable.
func (l *Learner) IsActive() bool {
	return l.Status == StatusActive
}
