package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states. NOT_STARTED is the explicit
// variant for the missing-row case: it is never persisted, but callers that
// join sessions against a roster use it instead of null-checking.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusOngoing    SessionStatus = "ONGOING"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// ViolationEvent is one entry of the append-only violation log.
type ViolationEvent struct {
	Time   time.Time `json:"time"`
	Reason string    `json:"reason"`
}

// ExamSession represents a student's single attempt at one exam. Unique on
// (exam_id, student_id). StartedAt is the sole time authority for remaining
// time; it is set once at creation and only an explicit reset discards it.
type ExamSession struct {
	ID                   uuid.UUID          `json:"id"`
	ExamID               uuid.UUID          `json:"exam_id"`
	StudentID            int                `json:"student_id"`
	Status               SessionStatus      `json:"status"`
	StartedAt            time.Time          `json:"started_at"`
	FinishedAt           *time.Time         `json:"finished_at,omitempty"`
	Answers              map[string]string  `json:"answers"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	Score                float64            `json:"score"`
	Scores               map[string]float64 `json:"scores"`
	IsLocked             bool               `json:"is_locked"`
	ViolationCount       int                `json:"violation_count"`
	ViolationLog         []ViolationEvent   `json:"violation_log"`
}

// StatusOf maps a possibly-missing session to its explicit status variant.
func StatusOf(s *ExamSession) SessionStatus {
	if s == nil {
		return SessionStatusNotStarted
	}
	return s.Status
}

// VerifyTokenRequest is the payload for the token gate.
type VerifyTokenRequest struct {
	Token     string `json:"token" binding:"required,min=4,max=20"`
	StudentID int    `json:"student_id" binding:"required"`
	Reset     bool   `json:"reset"`
}

// SaveProgressRequest is the payload for answer saves and natural submission.
type SaveProgressRequest struct {
	StudentID            int               `json:"student_id" binding:"required"`
	Answers              map[string]string `json:"answers"`
	CurrentQuestionIndex int               `json:"current_question_index" binding:"min=0"`
	Finished             bool              `json:"finished"`
}

// ReportViolationRequest is the payload from the client proctoring logic.
type ReportViolationRequest struct {
	StudentID int    `json:"student_id" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=500"`
	Count     int    `json:"count" binding:"min=0"`
	Lock      bool   `json:"lock"`
}

// StudentRefRequest carries the target student for teacher-invoked operations.
type StudentRefRequest struct {
	StudentID int `json:"student_id" binding:"required"`
}

// SubmitScoreRequest is the manual-correction payload: a full per-question
// points mapping that replaces the stored scores wholesale.
type SubmitScoreRequest struct {
	Scores map[string]float64 `json:"scores" binding:"required"`
}
