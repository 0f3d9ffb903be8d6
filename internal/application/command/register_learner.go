package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/learning-hub/internal/domain/learner"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER LEARNER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

const minPasswordLength = 8

// RegisterLearnerCommand contains the data needed to create a learner account.
type RegisterLearnerCommand struct {
	// Email is the unique login email.
	Email string

	// Password is the plaintext password; hashed before storage.
	Password string

	// DisplayName is the shown name.
	DisplayName string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterLearnerCommand) Validate() error {
	if !learner.Email(c.Email).IsValid() {
		return shared.ErrInvalidEmail
	}
	if len(c.Password) < minPasswordLength {
		return shared.ErrWeakPassword
	}
	if c.DisplayName == "" {
		return errors.New("register_learner: display_name is required")
	}
	return nil
}

// RegisterLearnerResult contains the created learner.
type RegisterLearnerResult struct {
	Learner *learner.Learner
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterLearnerHandler handles the RegisterLearnerCommand.
type RegisterLearnerHandler struct {
	learnerRepo    learner.Repository
	eventPublisher shared.EventPublisher
}

// NewRegisterLearnerHandler creates a new RegisterLearnerHandler.
func NewRegisterLearnerHandler(
	learnerRepo learner.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterLearnerHandler {
	return &RegisterLearnerHandler{
		learnerRepo:    learnerRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register learner command. A taken email surfaces as
// shared.ErrLearnerAlreadyExists from the repository's unique constraint.
func (h *RegisterLearnerHandler) Handle(ctx context.Context, cmd RegisterLearnerCommand) (*RegisterLearnerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_learner: validation failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_learner: failed to hash password: %w", err)
	}

	l, err := learner.NewLearner(learner.NewLearnerParams{
		ID:           uuid.New().String(),
		Email:        learner.Email(cmd.Email),
		PasswordHash: string(hash),
		DisplayName:  cmd.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("register_learner: %w", err)
	}

	if err := h.learnerRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	event := shared.NewLearnerRegisteredEvent(l.ID, l.Email.String(), l.DisplayName)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	_ = h.eventPublisher.Publish(event)

	return &RegisterLearnerResult{Learner: l}, nil
}
