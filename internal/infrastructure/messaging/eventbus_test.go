package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/learning-hub/internal/domain/shared"
)

func syncBusConfig() InMemoryEventBusConfig {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return cfg
}

func TestEventBus_PublishRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	var enrolled, completed []shared.Event
	assert.NoError(t, bus.Subscribe(shared.EventLearnerEnrolled, func(e shared.Event) error {
		enrolled = append(enrolled, e)
		return nil
	}))
	assert.NoError(t, bus.Subscribe(shared.EventCourseCompleted, func(e shared.Event) error {
		completed = append(completed, e)
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewLearnerEnrolledEvent("enr-1", "learner-1", "course-1", false)))

	assert.Len(t, enrolled, 1)
	assert.Empty(t, completed)
	assert.Equal(t, shared.EventLearnerEnrolled, enrolled[0].EventType())
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	var seen []shared.EventType
	assert.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewLearnerEnrolledEvent("enr-1", "learner-1", "course-1", true)))
	assert.NoError(t, bus.Publish(shared.NewLessonCompletedEvent("learner-1", "lesson-1", "course-1", 60, false)))

	assert.Equal(t, []shared.EventType{shared.EventLearnerReenrolled, shared.EventLessonCompleted}, seen)
}

func TestEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	called := 0
	assert.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		called++
		return errors.New("handler broke")
	}))
	assert.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		called++
		return nil
	}))

	// Domain events are fire-and-forget; a broken subscriber never blocks
	// the write path or the other subscribers.
	assert.NoError(t, bus.Publish(shared.NewEnrollmentExpiredEvent("enr-1", "learner-1", "course-1", time.Now().UTC())))
	assert.Equal(t, 2, called)
}

func TestEventBus_Closed(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	assert.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewLearnerEnrolledEvent("enr-1", "learner-1", "course-1", false)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventLearnerEnrolled, func(e shared.Event) error { return nil }), ErrEventBusClosed)
}
