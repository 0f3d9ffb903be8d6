package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE PROGRESS QUERY
// Aggregates a learner's per-lesson rows into a course-level summary. The
// summary is the hot read of the system (rendered on every course page), so
// it is served cache-aside with a bounded TTL.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseProgressQuery contains the parameters for a course summary lookup.
type GetCourseProgressQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// CourseID is the course to aggregate.
	CourseID string
}

// Validate validates the query parameters.
func (q GetCourseProgressQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("learner_id is required")
	}
	if q.CourseID == "" {
		return errors.New("course_id is required")
	}
	return nil
}

// GetCourseProgressResult contains the aggregated course summary.
type GetCourseProgressResult struct {
	Summary *progress.CourseSummary `json:"summary"`
}

// GetCourseProgressHandler handles course summary lookups.
type GetCourseProgressHandler struct {
	catalogRepo    catalog.Repository
	enrollmentRepo enrollment.Repository
	progressRepo   progress.Repository
	progressCache  progress.Cache
}

// NewGetCourseProgressHandler creates a new GetCourseProgressHandler.
func NewGetCourseProgressHandler(
	catalogRepo catalog.Repository,
	enrollmentRepo enrollment.Repository,
	progressRepo progress.Repository,
	progressCache progress.Cache,
) *GetCourseProgressHandler {
	return &GetCourseProgressHandler{
		catalogRepo:    catalogRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		progressCache:  progressCache,
	}
}

// Handle executes the query. The learner must hold an enrollment in the
// course in any status; without one the lookup is a not-found. A course whose
// lessons are not published yet yields zero totals, not an error.
func (h *GetCourseProgressHandler) Handle(ctx context.Context, query GetCourseProgressQuery) (*GetCourseProgressResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetCourseProgress", shared.ErrValidation, err.Error(), err)
	}

	if cached, err := h.progressCache.GetCourseSummary(ctx, query.LearnerID, query.CourseID); err == nil {
		return &GetCourseProgressResult{Summary: cached}, nil
	}

	enr, err := h.enrollmentRepo.GetByLearnerAndCourse(ctx, query.LearnerID, query.CourseID)
	if err != nil {
		return nil, err
	}

	summary, err := h.buildSummary(ctx, enr)
	if err != nil {
		return nil, err
	}

	_ = h.progressCache.SetCourseSummary(ctx, summary, CacheTTL)

	return &GetCourseProgressResult{Summary: summary}, nil
}

// buildSummary computes the aggregate from the published lesson set and the
// learner's progress rows. Completed rows only count when their lesson is
// still published, so the summary never reports more completed lessons than
// the course currently has; time spent keeps the full history.
func (h *GetCourseProgressHandler) buildSummary(ctx context.Context, enr *enrollment.Enrollment) (*progress.CourseSummary, error) {
	lessons, err := h.catalogRepo.ListPublishedLessons(ctx, enr.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: failed to list lessons: %w", err)
	}

	published := make(map[string]struct{}, len(lessons))
	for _, l := range lessons {
		published[l.ID] = struct{}{}
	}
	total := len(lessons)

	rows, err := h.progressRepo.ListByLearnerAndCourse(ctx, enr.LearnerID, enr.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: failed to list progress: %w", err)
	}

	var completed, timeSpent int
	for _, row := range rows {
		timeSpent += row.TimeSpentSeconds
		if !row.Completed {
			continue
		}
		if _, ok := published[row.LessonID]; ok {
			completed++
		}
	}

	return &progress.CourseSummary{
		LearnerID:             enr.LearnerID,
		CourseID:              enr.CourseID,
		TotalLessons:          total,
		CompletedLessons:      completed,
		PercentComplete:       percentOf(completed, total),
		TotalTimeSpentSeconds: timeSpent,
		EnrollmentStatus:      string(enr.Status),
		GeneratedAt:           time.Now().UTC(),
	}, nil
}

// percentOf computes a rounded completion ratio; zero lessons means zero.
func percentOf(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
