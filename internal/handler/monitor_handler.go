package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/response"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/service"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/validator"
)

// MonitorHandler handles the teacher-facing supervision endpoints.
type MonitorHandler struct {
	monitorService *service.MonitorService
	sessionService *service.ExamSessionService
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, sessionService *service.ExamSessionService) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		sessionService: sessionService,
	}
}

func parseExamAndStudent(c *gin.Context) (uuid.UUID, int, bool) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, 0, false
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, 0, false
	}
	return examID, studentID, true
}

// GetSnapshot godoc
// GET /api/v1/teacher/exams/:exam_id/monitor
// Returns one row per enrolled student in the exam's target class.
func (h *MonitorHandler) GetSnapshot(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snapshot, err := h.monitorService.Snapshot(c.Request.Context(), examID)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

// ForceFinish godoc
// POST /api/v1/teacher/exams/:exam_id/monitor/:student_id/finish
// Finalizes a student's session with whatever answers are stored.
func (h *MonitorHandler) ForceFinish(c *gin.Context) {
	examID, studentID, ok := parseExamAndStudent(c)
	if !ok {
		return
	}

	score, err := h.sessionService.ForceFinish(c.Request.Context(), examID, studentID)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"score": score})
}

// ResetSession godoc
// POST /api/v1/teacher/exams/:exam_id/reset
// Deletes a student's session so they can restart from scratch.
func (h *MonitorHandler) ResetSession(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StudentRefRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.ResetSession(c.Request.Context(), examID, req.StudentID); err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// UnlockStudent godoc
// POST /api/v1/teacher/exams/:exam_id/unlock-student
// Clears the lock and the violation state entirely.
func (h *MonitorHandler) UnlockStudent(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StudentRefRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Unlock(c.Request.Context(), examID, req.StudentID); err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unlocked": true})
}

// SubmitScore godoc
// POST /api/v1/teacher/exams/:exam_id/score/:student_id
// Replaces the per-question score breakdown after manual review.
func (h *MonitorHandler) SubmitScore(c *gin.Context) {
	examID, studentID, ok := parseExamAndStudent(c)
	if !ok {
		return
	}

	var req model.SubmitScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	total, err := h.sessionService.SubmitScore(c.Request.Context(), examID, studentID, req.Scores)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"score": total})
}
