package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// The uq_enrollments_learner_course constraint is the backstop for concurrent
// enrolls: the second inserter gets a unique violation and surfaces it as an
// already-enrolled conflict.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

// Create inserts a new enrollment row.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			id, learner_id, course_id, status, enrolled_at, expires_at,
			completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.LearnerID,
		e.CourseID,
		string(e.Status),
		e.EnrolledAt,
		e.ExpiresAt,
		e.CompletedAt,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// GetByID returns an enrollment by internal ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	query := selectEnrollment + ` WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanEnrollment(row)
}

// GetByLearnerAndCourse returns the enrollment for the natural key.
func (r *EnrollmentRepository) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	query := selectEnrollment + ` WHERE learner_id = $1 AND course_id = $2`

	row := r.conn.QueryRow(ctx, query, learnerID, courseID)
	return r.scanEnrollment(row)
}

// Update persists status and timestamp changes of an existing row.
func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		UPDATE enrollments SET
			status = $1,
			enrolled_at = $2,
			expires_at = $3,
			completed_at = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		string(e.Status),
		e.EnrolledAt,
		e.ExpiresAt,
		e.CompletedAt,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrEnrollmentNotFound
	}

	return nil
}

// ListByLearner returns all enrollments of a learner, newest first.
func (r *EnrollmentRepository) ListByLearner(ctx context.Context, learnerID string) ([]*enrollment.Enrollment, error) {
	query := selectEnrollment + ` WHERE learner_id = $1 ORDER BY enrolled_at DESC`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// HasCompleted reports whether the learner holds a completed enrollment for
// the course.
func (r *EnrollmentRepository) HasCompleted(ctx context.Context, learnerID, courseID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE learner_id = $1 AND course_id = $2 AND status = 'completed'
		)
	`

	var completed bool
	if err := r.conn.QueryRow(ctx, query, learnerID, courseID).Scan(&completed); err != nil {
		return false, fmt.Errorf("failed to check completion: %w", err)
	}

	return completed, nil
}

// CompleteIfActive marks an enrollment completed only while it is still
// active. The status predicate inside the statement is the concurrency guard:
// of two racing cascades exactly one sees RowsAffected == 1.
func (r *EnrollmentRepository) CompleteIfActive(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE enrollments SET
			status = 'completed',
			completed_at = $1,
			updated_at = $1
		WHERE id = $2 AND status = 'active'
	`

	result, err := r.conn.Exec(ctx, query, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to complete enrollment: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// ListExpirable returns active enrollments whose expiry date has passed.
func (r *EnrollmentRepository) ListExpirable(ctx context.Context, before time.Time, limit int) ([]*enrollment.Enrollment, error) {
	query := selectEnrollment + `
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable enrollments: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const selectEnrollment = `
	SELECT id, learner_id, course_id, status, enrolled_at, expires_at,
		   completed_at, created_at, updated_at
	FROM enrollments
`

// scanEnrollment scans a single enrollment from a row.
func (r *EnrollmentRepository) scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	var status string

	err := row.Scan(
		&e.ID,
		&e.LearnerID,
		&e.CourseID,
		&status,
		&e.EnrolledAt,
		&e.ExpiresAt,
		&e.CompletedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}

	e.Status = enrollment.Status(status)

	return &e, nil
}

// scanEnrollments scans multiple enrollments.
func (r *EnrollmentRepository) scanEnrollments(rows pgx.Rows) ([]*enrollment.Enrollment, error) {
	var enrollments []*enrollment.Enrollment

	for rows.Next() {
		e, err := r.scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}
