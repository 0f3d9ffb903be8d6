package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-hub/internal/domain/learner"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

// Create creates a new learner account.
func (r *LearnerRepository) Create(ctx context.Context, l *learner.Learner) error {
	query := `
		INSERT INTO learners (
			id, email, password_hash, display_name, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.Email.String(),
		l.PasswordHash,
		l.DisplayName,
		string(l.Status),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrLearnerAlreadyExists
		}
		return fmt.Errorf("failed to create learner: %w", err)
	}

	return nil
}

// GetByID returns a learner by internal ID.
func (r *LearnerRepository) GetByID(ctx context.Context, id string) (*learner.Learner, error) {
	query := `
		SELECT id, email, password_hash, display_name, status, created_at, updated_at
		FROM learners
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanLearner(row)
}

// GetByEmail returns a learner by email.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email learner.Email) (*learner.Learner, error) {
	query := `
		SELECT id, email, password_hash, display_name, status, created_at, updated_at
		FROM learners
		WHERE email = $1
	`

	row := r.conn.QueryRow(ctx, query, email.String())
	return r.scanLearner(row)
}

// Exists reports whether a learner with the given ID exists.
func (r *LearnerRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM learners WHERE id = $1)`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check learner existence: %w", err)
	}

	return exists, nil
}

// scanLearner scans a single learner from a row.
func (r *LearnerRepository) scanLearner(row pgx.Row) (*learner.Learner, error) {
	var l learner.Learner
	var email, status string

	err := row.Scan(
		&l.ID,
		&email,
		&l.PasswordHash,
		&l.DisplayName,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrLearnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan learner: %w", err)
	}

	l.Email = learner.Email(email)
	l.Status = learner.Status(status)

	return &l, nil
}
