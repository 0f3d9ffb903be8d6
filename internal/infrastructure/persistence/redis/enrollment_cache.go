package redis

import (
	"context"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
)

// EnrollmentCache implements enrollment.Cache using the generic Redis Cache.
// Every enrollment is stored under two keys: the internal ID and the
// (learner, course) natural key. Set writes both, Invalidate deletes both,
// so the two views cannot drift apart for longer than the TTL.
type EnrollmentCache struct {
	cache *Cache
}

// NewEnrollmentCache creates a new EnrollmentCache.
func NewEnrollmentCache(cache *Cache) *EnrollmentCache {
	return &EnrollmentCache{
		cache: cache,
	}
}

// GetByID gets an enrollment from cache by internal ID.
func (c *EnrollmentCache) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	var e enrollmentRecord
	if err := c.cache.Get(ctx, EnrollmentKey(id), &e); err != nil {
		return nil, err
	}
	return e.toDomain(), nil
}

// GetByLearnerAndCourse gets an enrollment from cache by natural key.
func (c *EnrollmentCache) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	var e enrollmentRecord
	if err := c.cache.Get(ctx, EnrollmentLookupKey(learnerID, courseID), &e); err != nil {
		return nil, err
	}
	return e.toDomain(), nil
}

// Set caches an enrollment under both its ID key and its lookup key.
func (c *EnrollmentCache) Set(ctx context.Context, e *enrollment.Enrollment, ttl time.Duration) error {
	if e == nil {
		return nil
	}

	record := fromDomain(e)
	if err := c.cache.Set(ctx, EnrollmentKey(e.ID), record, ttl); err != nil {
		return err
	}
	return c.cache.Set(ctx, EnrollmentLookupKey(e.LearnerID, e.CourseID), record, ttl)
}

// Invalidate removes the ID key and the lookup key for an enrollment.
func (c *EnrollmentCache) Invalidate(ctx context.Context, id, learnerID, courseID string) error {
	return c.cache.Delete(ctx,
		EnrollmentKey(id),
		EnrollmentLookupKey(learnerID, courseID),
	)
}

// enrollmentRecord is the JSON schema stored under enrollment keys. The
// domain entity carries no json tags, so the cache owns its wire form.
type enrollmentRecord struct {
	ID          string     `json:"id"`
	LearnerID   string     `json:"learner_id"`
	CourseID    string     `json:"course_id"`
	Status      string     `json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func fromDomain(e *enrollment.Enrollment) enrollmentRecord {
	return enrollmentRecord{
		ID:          e.ID,
		LearnerID:   e.LearnerID,
		CourseID:    e.CourseID,
		Status:      string(e.Status),
		EnrolledAt:  e.EnrolledAt,
		ExpiresAt:   e.ExpiresAt,
		CompletedAt: e.CompletedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r enrollmentRecord) toDomain() *enrollment.Enrollment {
	return &enrollment.Enrollment{
		ID:          r.ID,
		LearnerID:   r.LearnerID,
		CourseID:    r.CourseID,
		Status:      enrollment.Status(r.Status),
		EnrolledAt:  r.EnrolledAt,
		ExpiresAt:   r.ExpiresAt,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
