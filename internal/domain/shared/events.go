// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the learning domain.
const (
	// Learner events
	EventLearnerRegistered EventType = "learner.registered"

	// Enrollment events
	EventLearnerEnrolled    EventType = "enrollment.created"
	EventLearnerReenrolled  EventType = "enrollment.reactivated"
	EventCourseCompleted    EventType = "enrollment.completed"
	EventEnrollmentExpired  EventType = "enrollment.expired"
	EventEnrollmentCanceled EventType = "enrollment.cancelled"

	// Progress events
	EventProgressRecorded EventType = "progress.recorded"
	EventLessonCompleted  EventType = "progress.lesson_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// LearnerEnrolledEvent is emitted when a learner enrolls in a course.
type LearnerEnrolledEvent struct {
	BaseEvent
	LearnerID  string `json:"learner_id"`
	CourseID   string `json:"course_id"`
	Reenrolled bool   `json:"reenrolled"`
}

// Payload implements Event interface.
func (e LearnerEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"course_id":  e.CourseID,
		"reenrolled": e.Reenrolled,
	}
}

// NewLearnerEnrolledEvent creates a new LearnerEnrolledEvent.
// The aggregate is the enrollment itself.
func NewLearnerEnrolledEvent(enrollmentID, learnerID, courseID string, reenrolled bool) LearnerEnrolledEvent {
	eventType := EventLearnerEnrolled
	if reenrolled {
		eventType = EventLearnerReenrolled
	}
	return LearnerEnrolledEvent{
		BaseEvent:  NewBaseEvent(eventType, enrollmentID),
		LearnerID:  learnerID,
		CourseID:   courseID,
		Reenrolled: reenrolled,
	}
}

// CourseCompletedEvent is emitted when the completion cascade flips an
// enrollment to completed.
type CourseCompletedEvent struct {
	BaseEvent
	LearnerID        string    `json:"learner_id"`
	CourseID         string    `json:"course_id"`
	LessonsCompleted int       `json:"lessons_completed"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":        e.LearnerID,
		"course_id":         e.CourseID,
		"lessons_completed": e.LessonsCompleted,
		"completed_at":      e.CompletedAt.Format(time.RFC3339),
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(enrollmentID, learnerID, courseID string, lessonsCompleted int, completedAt time.Time) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent:        NewBaseEvent(EventCourseCompleted, enrollmentID),
		LearnerID:        learnerID,
		CourseID:         courseID,
		LessonsCompleted: lessonsCompleted,
		CompletedAt:      completedAt,
	}
}

// EnrollmentExpiredEvent is emitted when the expiry sweep closes an enrollment.
type EnrollmentExpiredEvent struct {
	BaseEvent
	LearnerID string    `json:"learner_id"`
	CourseID  string    `json:"course_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

// Payload implements Event interface.
func (e EnrollmentExpiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"course_id":  e.CourseID,
		"expired_at": e.ExpiredAt.Format(time.RFC3339),
	}
}

// NewEnrollmentExpiredEvent creates a new EnrollmentExpiredEvent.
func NewEnrollmentExpiredEvent(enrollmentID, learnerID, courseID string, expiredAt time.Time) EnrollmentExpiredEvent {
	return EnrollmentExpiredEvent{
		BaseEvent: NewBaseEvent(EventEnrollmentExpired, enrollmentID),
		LearnerID: learnerID,
		CourseID:  courseID,
		ExpiredAt: expiredAt,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// LessonCompletedEvent is emitted when a learner explicitly completes a lesson.
type LessonCompletedEvent struct {
	BaseEvent
	LearnerID        string `json:"learner_id"`
	LessonID         string `json:"lesson_id"`
	CourseID         string `json:"course_id"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
	CourseCompleted  bool   `json:"course_completed"`
}

// Payload implements Event interface.
func (e LessonCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":         e.LearnerID,
		"lesson_id":          e.LessonID,
		"course_id":          e.CourseID,
		"time_spent_seconds": e.TimeSpentSeconds,
		"course_completed":   e.CourseCompleted,
	}
}

// NewLessonCompletedEvent creates a new LessonCompletedEvent.
func NewLessonCompletedEvent(learnerID, lessonID, courseID string, timeSpentSeconds int, courseCompleted bool) LessonCompletedEvent {
	return LessonCompletedEvent{
		BaseEvent:        NewBaseEvent(EventLessonCompleted, learnerID),
		LearnerID:        learnerID,
		LessonID:         lessonID,
		CourseID:         courseID,
		TimeSpentSeconds: timeSpentSeconds,
		CourseCompleted:  courseCompleted,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Learner Events
// ═══════════════════════════════════════════════════════════════════════════

// LearnerRegisteredEvent is emitted when a new learner account is created.
type LearnerRegisteredEvent struct {
	BaseEvent
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Payload implements Event interface.
func (e LearnerRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"email":        e.Email,
		"display_name": e.DisplayName,
	}
}

// NewLearnerRegisteredEvent creates a new LearnerRegisteredEvent.
func NewLearnerRegisteredEvent(learnerID, email, displayName string) LearnerRegisteredEvent {
	return LearnerRegisteredEvent{
		BaseEvent:   NewBaseEvent(EventLearnerRegistered, learnerID),
		Email:       email,
		DisplayName: displayName,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
