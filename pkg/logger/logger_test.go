package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "learner_id", Value: "l-1"}, LearnerID("l-1"))
	assert.Equal(t, Field{Key: "course_id", Value: "c-1"}, CourseID("c-1"))
	assert.Equal(t, Field{Key: "lesson_id", Value: "le-1"}, LessonID("le-1"))
	assert.Equal(t, Field{Key: "enrollment_id", Value: "e-1"}, EnrollmentID("e-1"))
	assert.Equal(t, Field{Key: "email", Value: "a@b.io"}, Email("a@b.io"))
	assert.Equal(t, Field{Key: "component", Value: "http"}, Component("http"))
	assert.Equal(t, Field{Key: "operation", Value: "enroll"}, Operation("enroll"))
	assert.Equal(t, Field{Key: "latency", Value: "1.5s"}, Latency(1500*time.Millisecond))
}

func TestLoggerWritesFieldsAsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, AddCaller: false})

	log.Info("enrollment processed",
		Operation("enroll"),
		LearnerID("learner-1"),
		CourseID("course-1"),
	)

	var entry LogEntry
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "enrollment processed", entry.Message)
	assert.Equal(t, "enroll", entry.Fields["operation"])
	assert.Equal(t, "learner-1", entry.Fields["learner_id"])
	assert.Equal(t, "course-1", entry.Fields["course_id"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn, AddCaller: false})

	log.Debug("below threshold")
	log.Info("below threshold")
	assert.Zero(t, buf.Len())

	log.Warn("surfaced")
	assert.NotZero(t, buf.Len())
}

func TestWithAccumulatesFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf, Level: LevelInfo, AddCaller: false})

	scoped := base.WithRequestID("req-1").With(Component("http"))
	scoped.Info("http request", Latency(42*time.Millisecond))

	var entry LogEntry
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry.Fields["request_id"])
	assert.Equal(t, "http", entry.Fields["component"])
	assert.Equal(t, "42ms", entry.Fields["latency"])
}
