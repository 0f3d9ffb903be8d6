// Package http implements the REST API for Learning Hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/learnhub/learning-hub/internal/application/command"
	"github.com/learnhub/learning-hub/internal/application/query"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/learner"
	"github.com/learnhub/learning-hub/internal/domain/shared"
	"github.com/learnhub/learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Learning Hub API",
		"version":     "v1",
		"description": "REST API for enrollment lifecycle and learning progress tracking",
		"endpoints": map[string]string{
			"health":   "/health",
			"learners": "/api/v1/learners",
			"enroll":   "/api/v1/courses/{courseID}/enroll",
			"progress": "/api/v1/lessons/{lessonID}/progress",
			"complete": "/api/v1/lessons/{lessonID}/complete",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics exposes basic server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerLearnerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// handleRegisterLearner handles POST /api/v1/learners
func (s *Server) handleRegisterLearner(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterLearnerHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Learner registration not configured")
		return
	}

	var req registerLearnerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterLearnerHandler.Handle(r.Context(), command.RegisterLearnerCommand{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to register learner")
		return
	}

	s.logger.Info("learner registered",
		logger.Operation("register_learner"),
		logger.LearnerID(result.Learner.ID),
		logger.Email(result.Learner.Email.String()),
	)

	writeJSON(w, http.StatusCreated, learnerToResponse(result.Learner))
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type enrollRequest struct {
	LearnerID string `json:"learner_id"`
}

type enrollResponse struct {
	Enrollment *enrollmentResponse `json:"enrollment"`
	Reenrolled bool                `json:"reenrolled"`
}

// handleEnroll handles POST /api/v1/courses/{courseID}/enroll
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	if s.deps.EnrollHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	courseID := r.PathValue("courseID")
	var req enrollRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.EnrollHandler.Handle(r.Context(), command.EnrollCommand{
		LearnerID:     req.LearnerID,
		CourseID:      courseID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to enroll")
		return
	}

	s.logger.Info("enrollment processed",
		logger.Operation("enroll"),
		logger.EnrollmentID(result.Enrollment.ID),
		logger.LearnerID(req.LearnerID),
		logger.CourseID(courseID),
		logger.Bool("reenrolled", result.Reenrolled),
	)

	writeJSON(w, http.StatusCreated, enrollResponse{
		Enrollment: enrollmentToResponse(result.Enrollment),
		Reenrolled: result.Reenrolled,
	})
}

// handleGetEnrollment handles GET /api/v1/enrollments/{id}
func (s *Server) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetEnrollmentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	result, err := s.deps.GetEnrollmentHandler.Handle(r.Context(), query.GetEnrollmentQuery{
		EnrollmentID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get enrollment")
		return
	}

	writeJSON(w, http.StatusOK, enrollmentToResponse(result.Enrollment))
}

// handleGetEnrollmentByCourse handles
// GET /api/v1/learners/{learnerID}/courses/{courseID}/enrollment
func (s *Server) handleGetEnrollmentByCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetEnrollmentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Enrollment handler not configured")
		return
	}

	result, err := s.deps.GetEnrollmentHandler.Handle(r.Context(), query.GetEnrollmentQuery{
		LearnerID: r.PathValue("learnerID"),
		CourseID:  r.PathValue("courseID"),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get enrollment")
		return
	}

	writeJSON(w, http.StatusOK, enrollmentToResponse(result.Enrollment))
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordProgressRequest struct {
	LearnerID           string `json:"learner_id"`
	ProgressPercentage  *int   `json:"progress_percentage,omitempty"`
	TimeSpentSeconds    int    `json:"time_spent_seconds"`
	LastPositionSeconds *int   `json:"last_position_seconds,omitempty"`
}

// handleRecordProgress handles POST /api/v1/lessons/{lessonID}/progress
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	lessonID := r.PathValue("lessonID")
	var req recordProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordProgressHandler.Handle(r.Context(), command.RecordProgressCommand{
		LearnerID:           req.LearnerID,
		LessonID:            lessonID,
		ProgressPercentage:  req.ProgressPercentage,
		TimeSpentSeconds:    req.TimeSpentSeconds,
		LastPositionSeconds: req.LastPositionSeconds,
		CorrelationID:       getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to record progress")
		return
	}

	s.logger.Debug("progress recorded",
		logger.Operation("record_progress"),
		logger.LearnerID(req.LearnerID),
		logger.LessonID(lessonID),
	)

	writeJSON(w, http.StatusOK, result.Progress)
}

type completeLessonRequest struct {
	LearnerID        string `json:"learner_id"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

type completeLessonResponse struct {
	Progress        interface{} `json:"progress"`
	CourseCompleted bool        `json:"course_completed"`
}

// handleCompleteLesson handles POST /api/v1/lessons/{lessonID}/complete
func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompleteLessonHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Completion handler not configured")
		return
	}

	lessonID := r.PathValue("lessonID")
	var req completeLessonRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CompleteLessonHandler.Handle(r.Context(), command.CompleteLessonCommand{
		LearnerID:        req.LearnerID,
		LessonID:         lessonID,
		TimeSpentSeconds: req.TimeSpentSeconds,
		CorrelationID:    getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to complete lesson")
		return
	}

	s.logger.Info("lesson completed",
		logger.Operation("complete_lesson"),
		logger.LearnerID(req.LearnerID),
		logger.LessonID(lessonID),
		logger.Bool("course_completed", result.CourseCompleted),
	)

	writeJSON(w, http.StatusOK, completeLessonResponse{
		Progress:        result.Progress,
		CourseCompleted: result.CourseCompleted,
	})
}

// handleGetLessonProgress handles
// GET /api/v1/learners/{learnerID}/lessons/{lessonID}/progress
func (s *Server) handleGetLessonProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLessonProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	result, err := s.deps.GetLessonProgressHandler.Handle(r.Context(), query.GetLessonProgressQuery{
		LearnerID: r.PathValue("learnerID"),
		LessonID:  r.PathValue("lessonID"),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get lesson progress")
		return
	}

	writeJSON(w, http.StatusOK, result.Progress)
}

// handleGetCourseProgress handles
// GET /api/v1/learners/{learnerID}/courses/{courseID}/progress
func (s *Server) handleGetCourseProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetCourseProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	result, err := s.deps.GetCourseProgressHandler.Handle(r.Context(), query.GetCourseProgressQuery{
		LearnerID: r.PathValue("learnerID"),
		CourseID:  r.PathValue("courseID"),
	})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get course progress")
		return
	}

	writeJSON(w, http.StatusOK, result.Summary)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// learnerResponse is the API representation of a learner.
// The password hash never leaves the service.
type learnerResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func learnerToResponse(l *learner.Learner) *learnerResponse {
	if l == nil {
		return nil
	}
	return &learnerResponse{
		ID:          l.ID,
		Email:       l.Email.String(),
		DisplayName: l.DisplayName,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
	}
}

// enrollmentResponse is the API representation of an enrollment.
type enrollmentResponse struct {
	ID          string     `json:"id"`
	LearnerID   string     `json:"learner_id"`
	CourseID    string     `json:"course_id"`
	Status      string     `json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func enrollmentToResponse(e *enrollment.Enrollment) *enrollmentResponse {
	if e == nil {
		return nil
	}
	return &enrollmentResponse{
		ID:          e.ID,
		LearnerID:   e.LearnerID,
		CourseID:    e.CourseID,
		Status:      string(e.Status),
		EnrolledAt:  e.EnrolledAt,
		ExpiresAt:   e.ExpiresAt,
		CompletedAt: e.CompletedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING & ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

const maxRequestBodyBytes = 1 << 20 // 1 MB

// decodeBody decodes the JSON request body into dst. On failure it writes
// a 400 response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed request body: "+err.Error())
		return false
	}

	return true
}

// writeDomainError maps a domain error to an HTTP status and writes the
// response. Unrecognized errors become 500s with a generic message so
// internals never leak to clients.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	message := fallback
	var de *shared.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}

	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", message)
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", message)
	case shared.IsForbidden(err):
		writeJSONError(w, http.StatusForbidden, "forbidden", message)
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", message)
	case shared.IsInvalidState(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_state", message)
	default:
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
