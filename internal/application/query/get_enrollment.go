package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ENROLLMENT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetEnrollmentQuery contains the parameters for an enrollment lookup.
// Exactly one of EnrollmentID or the (LearnerID, CourseID) pair is used;
// EnrollmentID wins when both are present.
type GetEnrollmentQuery struct {
	// EnrollmentID is the internal enrollment ID.
	EnrollmentID string

	// LearnerID and CourseID look up by natural key.
	LearnerID string
	CourseID  string
}

// Validate validates the query parameters.
func (q GetEnrollmentQuery) Validate() error {
	if q.EnrollmentID != "" {
		return nil
	}
	if q.LearnerID != "" && q.CourseID != "" {
		return nil
	}
	return errors.New("either enrollment_id or both learner_id and course_id are required")
}

// GetEnrollmentResult contains the enrollment.
type GetEnrollmentResult struct {
	Enrollment *enrollment.Enrollment `json:"enrollment"`
}

// GetEnrollmentHandler handles enrollment lookups with a cache-aside read path.
type GetEnrollmentHandler struct {
	enrollmentRepo  enrollment.Repository
	enrollmentCache enrollment.Cache
}

// NewGetEnrollmentHandler creates a new GetEnrollmentHandler.
func NewGetEnrollmentHandler(
	enrollmentRepo enrollment.Repository,
	enrollmentCache enrollment.Cache,
) *GetEnrollmentHandler {
	return &GetEnrollmentHandler{
		enrollmentRepo:  enrollmentRepo,
		enrollmentCache: enrollmentCache,
	}
}

// Handle executes the query.
func (h *GetEnrollmentHandler) Handle(ctx context.Context, query GetEnrollmentQuery) (*GetEnrollmentResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetEnrollment", shared.ErrValidation, err.Error(), err)
	}

	if query.EnrollmentID != "" {
		return h.byID(ctx, query.EnrollmentID)
	}
	return h.byNaturalKey(ctx, query.LearnerID, query.CourseID)
}

func (h *GetEnrollmentHandler) byID(ctx context.Context, id string) (*GetEnrollmentResult, error) {
	if cached, err := h.enrollmentCache.GetByID(ctx, id); err == nil {
		return &GetEnrollmentResult{Enrollment: cached}, nil
	}

	enr, err := h.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = h.enrollmentCache.Set(ctx, enr, CacheTTL)
	return &GetEnrollmentResult{Enrollment: enr}, nil
}

func (h *GetEnrollmentHandler) byNaturalKey(ctx context.Context, learnerID, courseID string) (*GetEnrollmentResult, error) {
	if cached, err := h.enrollmentCache.GetByLearnerAndCourse(ctx, learnerID, courseID); err == nil {
		return &GetEnrollmentResult{Enrollment: cached}, nil
	}

	enr, err := h.enrollmentRepo.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get_enrollment: failed to load enrollment: %w", err)
	}

	_ = h.enrollmentCache.Set(ctx, enr, CacheTTL)
	return &GetEnrollmentResult{Enrollment: enr}, nil
}
