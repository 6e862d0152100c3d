package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/middleware"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/response"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/service"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/validator"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionHandler handles the student-facing exam lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.ExamSessionService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.ExamSessionService, rdb *redis.Client, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		rdb:            rdb,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// failLifecycle maps the session lifecycle's sentinel errors onto response
// codes. Anything unrecognized is a store failure.
func failLifecycle(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrExamNotYetOpen):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotYetOpen)
	case errors.Is(err, service.ErrExamExpired):
		response.Fail(c, http.StatusForbidden, response.ErrExamExpired)
	case errors.Is(err, service.ErrEntryTokenMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrEntryTokenInvalid)
	case errors.Is(err, service.ErrSessionLocked):
		response.Fail(c, http.StatusForbidden, response.ErrSessionLocked)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrClassMismatch):
		response.Fail(c, http.StatusForbidden, response.ErrClassMismatch)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// requireOwnSession rejects requests where the authenticated student tries
// to act on another student's session.
func requireOwnSession(c *gin.Context, claims *service.Claims, studentID int) bool {
	if claims.UserID != studentID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return false
	}
	return true
}

// VerifyToken godoc
// POST /api/v1/student/exams/:exam_id/verify-token
// Validates the entry token and creates or resumes the session (idempotent).
func (h *SessionHandler) VerifyToken(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.VerifyTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !requireOwnSession(c, claims, req.StudentID) {
		return
	}

	session, err := h.sessionService.VerifyAndStart(c.Request.Context(), examID, req.StudentID, req.Token, req.Reset)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// TakeExam godoc
// GET /api/v1/student/exams/:exam_id/take
// Returns the exam header, the sanitized paper and the saved session state.
// Covers page reloads: answers, current question and remaining time all come
// back from the server.
func (h *SessionHandler) TakeExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.FetchForStudent(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SubmitProgress godoc
// PUT /api/v1/student/exams/:exam_id/submit
// Saves the answer map wholesale; with finished=true, grades and completes.
func (h *SessionHandler) SubmitProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !requireOwnSession(c, claims, req.StudentID) {
		return
	}

	result, err := h.sessionService.SaveProgress(c.Request.Context(), examID, req.StudentID, req.Answers, req.CurrentQuestionIndex, req.Finished)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ReportViolation godoc
// POST /api/v1/student/exams/:exam_id/violation
// Records an anti-cheating event against the session and queues the audit
// entry for background persistence.
func (h *SessionHandler) ReportViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !requireOwnSession(c, claims, req.StudentID) {
		return
	}

	session, err := h.sessionService.ReportViolation(c.Request.Context(), examID, req.StudentID, req.Reason, req.Count, req.Lock)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	// The session row already holds the authoritative state; the queue only
	// feeds the audit table, so a Redis hiccup is logged and swallowed.
	job := worker.ViolationJob{
		ExamID:    examID.String(),
		StudentID: req.StudentID,
		Reason:    req.Reason,
		Count:     session.ViolationCount,
		Locked:    session.IsLocked,
		Timestamp: time.Now().Unix(),
	}
	if err := worker.EnqueueViolation(c.Request.Context(), h.rdb, job); err != nil {
		h.log.Error().Err(err).Int("student_id", req.StudentID).Msg("Failed to enqueue violation audit entry")
	}

	response.Success(c, http.StatusOK, gin.H{
		"violation_count": session.ViolationCount,
		"is_locked":       session.IsLocked,
	})
}
