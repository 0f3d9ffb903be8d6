package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY IMPLEMENTATION
// The catalog tables are owned by the course-authoring module; this side only
// reads them. Prerequisite IDs are loaded with a second query rather than an
// aggregate join since the lists are tiny (most courses have zero or one).
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements catalog.Repository for PostgreSQL.
type CatalogRepository struct {
	conn *Connection
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

// GetCourse returns a course by ID, prerequisites included.
func (r *CatalogRepository) GetCourse(ctx context.Context, courseID string) (*catalog.Course, error) {
	query := `
		SELECT id, title, instructor_id, status, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var c catalog.Course
	var status string

	err := r.conn.QueryRow(ctx, query, courseID).Scan(
		&c.ID,
		&c.Title,
		&c.InstructorID,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Status = catalog.CourseStatus(status)

	prereqs, err := r.listPrerequisites(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.PrerequisiteIDs = prereqs

	return &c, nil
}

// GetLesson returns a lesson by ID.
func (r *CatalogRepository) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
	query := `
		SELECT id, course_id, title, lesson_type, duration_minutes, order_index, is_published
		FROM lessons
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, lessonID)
	return r.scanLesson(row)
}

// ListPublishedLessons returns the published lessons of a course in order.
func (r *CatalogRepository) ListPublishedLessons(ctx context.Context, courseID string) ([]*catalog.Lesson, error) {
	query := `
		SELECT id, course_id, title, lesson_type, duration_minutes, order_index, is_published
		FROM lessons
		WHERE course_id = $1 AND is_published
		ORDER BY order_index
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*catalog.Lesson
	for rows.Next() {
		lesson, err := r.scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}

// CountPublishedLessons returns how many published lessons a course has.
func (r *CatalogRepository) CountPublishedLessons(ctx context.Context, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM lessons WHERE course_id = $1 AND is_published`

	var count int
	if err := r.conn.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	return count, nil
}

// listPrerequisites returns the prerequisite course IDs of a course.
func (r *CatalogRepository) listPrerequisites(ctx context.Context, courseID string) ([]string, error) {
	query := `SELECT prerequisite_id FROM course_prerequisites WHERE course_id = $1`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// scanLesson scans a single lesson from a row.
func (r *CatalogRepository) scanLesson(row pgx.Row) (*catalog.Lesson, error) {
	var l catalog.Lesson
	var lessonType string

	err := row.Scan(
		&l.ID,
		&l.CourseID,
		&l.Title,
		&lessonType,
		&l.DurationMinutes,
		&l.OrderIndex,
		&l.IsPublished,
	)

	if IsNoRows(err) {
		return nil, shared.ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lesson: %w", err)
	}

	l.Type = catalog.LessonType(lessonType)

	return &l, nil
}
