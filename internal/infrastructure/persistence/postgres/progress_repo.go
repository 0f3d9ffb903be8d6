package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// The write path is a single INSERT ... ON CONFLICT statement keyed by the
// (learner, lesson) natural key. Time spent is accumulated inside the
// statement so concurrent updates from multiple devices never lose seconds,
// and the completed flag is sticky (OR with the stored value).
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// GetByLearnerAndLesson returns the progress row for the natural key.
func (r *ProgressRepository) GetByLearnerAndLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	query := selectProgress + ` WHERE learner_id = $1 AND lesson_id = $2`

	row := r.conn.QueryRow(ctx, query, learnerID, lessonID)
	return r.scanProgress(row)
}

// Upsert writes the row for (p.LearnerID, p.LessonID), creating it when
// absent. timeSpentDelta is added to the stored total inside the statement;
// the returned row reflects what the database holds after the write.
func (r *ProgressRepository) Upsert(ctx context.Context, p *progress.Progress, timeSpentDelta int) (*progress.Progress, error) {
	query := `
		INSERT INTO lesson_progress (
			id, learner_id, lesson_id, course_id, progress_percentage,
			completed, time_spent_seconds, last_position_seconds,
			completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (learner_id, lesson_id) DO UPDATE SET
			progress_percentage = EXCLUDED.progress_percentage,
			completed = lesson_progress.completed OR EXCLUDED.completed,
			time_spent_seconds = lesson_progress.time_spent_seconds + $12,
			last_position_seconds = EXCLUDED.last_position_seconds,
			completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at),
			updated_at = EXCLUDED.updated_at
		RETURNING id, learner_id, lesson_id, course_id, progress_percentage,
				  completed, time_spent_seconds, last_position_seconds,
				  completed_at, created_at, updated_at
	`

	row := r.conn.QueryRow(ctx, query,
		p.ID,
		p.LearnerID,
		p.LessonID,
		p.CourseID,
		p.ProgressPercentage,
		p.Completed,
		timeSpentDelta, // insert path: the delta is the initial total
		p.LastPositionSeconds,
		p.CompletedAt,
		p.CreatedAt,
		p.UpdatedAt,
		timeSpentDelta,
	)

	stored, err := r.scanProgress(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	return stored, nil
}

// ListByLearnerAndCourse returns all progress rows of a learner for lessons
// of the given course.
func (r *ProgressRepository) ListByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]*progress.Progress, error) {
	query := selectProgress + ` WHERE learner_id = $1 AND course_id = $2`

	rows, err := r.conn.Query(ctx, query, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var records []*progress.Progress
	for rows.Next() {
		p, err := r.scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// CountCompletedByCourse counts the learner's completed lessons among the
// currently published lessons of a course. Completions of lessons that were
// unpublished later do not count, so the completion cascade only fires when
// every lesson still in the course is done.
func (r *ProgressRepository) CountCompletedByCourse(ctx context.Context, learnerID, courseID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM lesson_progress
		WHERE learner_id = $1 AND course_id = $2 AND completed
		  AND lesson_id IN (SELECT id FROM lessons WHERE course_id = $2 AND is_published)
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, learnerID, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const selectProgress = `
	SELECT id, learner_id, lesson_id, course_id, progress_percentage,
		   completed, time_spent_seconds, last_position_seconds,
		   completed_at, created_at, updated_at
	FROM lesson_progress
`

// scanProgress scans a single progress row.
func (r *ProgressRepository) scanProgress(row pgx.Row) (*progress.Progress, error) {
	var p progress.Progress

	err := row.Scan(
		&p.ID,
		&p.LearnerID,
		&p.LessonID,
		&p.CourseID,
		&p.ProgressPercentage,
		&p.Completed,
		&p.TimeSpentSeconds,
		&p.LastPositionSeconds,
		&p.CompletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	return &p, nil
}
