package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// Domain errors surfaced by the session lifecycle. Handlers map these onto
// response codes; everything else is treated as a store failure.
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrExamNotYetOpen     = errors.New("exam is not open yet")
	ErrExamExpired        = errors.New("exam window has expired")
	ErrEntryTokenMismatch = errors.New("entry token mismatch")
	ErrSessionLocked      = errors.New("session is locked due to violations")
	ErrAlreadyCompleted   = errors.New("session is already completed")
	ErrClassMismatch      = errors.New("exam is not targeted at the student's class")
)

// SessionStore is the durable keyed storage for one record per
// (exam, student) pair. Satisfied by repository.ExamSessionRepository.
type SessionStore interface {
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error)
	Create(ctx context.Context, s *model.ExamSession) error
	SaveProgress(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]string, currentIndex int) (bool, error)
	CompleteWithAnswers(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]string, score float64, scores map[string]float64) (bool, error)
	Complete(ctx context.Context, examID uuid.UUID, studentID int, score float64, scores map[string]float64) (bool, error)
	RecordViolation(ctx context.Context, examID uuid.UUID, studentID int, event model.ViolationEvent, count int, lock bool) (bool, error)
	Unlock(ctx context.Context, examID uuid.UUID, studentID int) (bool, error)
	OverwriteScores(ctx context.Context, examID uuid.UUID, studentID int, scores map[string]float64, total float64) (bool, error)
	Delete(ctx context.Context, examID uuid.UUID, studentID int) error
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSession, error)
}

// ExamStore resolves exam headers. Satisfied by repository.ExamRepository.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// ExamCatalog additionally enumerates open exams for cache prewarming.
type ExamCatalog interface {
	ExamStore
	ListOpen(ctx context.Context) ([]model.Exam, error)
}

// QuestionSource is the read-only ground truth for grading.
// Satisfied by repository.QuestionRepository.
type QuestionSource interface {
	GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error)
	ListByBank(ctx context.Context, qbankID uuid.UUID) ([]model.Question, error)
}

// RosterStore resolves students and the class roster.
// Satisfied by repository.StudentRepository.
type RosterStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	ListAll(ctx context.Context) ([]model.Student, error)
}

// PaperSource serves the sanitized, cacheable question paper for an exam.
// Satisfied by ExamService.
type PaperSource interface {
	GetPaper(ctx context.Context, exam *model.Exam) (*model.ExamPaper, error)
}
