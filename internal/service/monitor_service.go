package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/rs/zerolog"
)

// MonitorService builds the live dashboard for a running exam: one row per
// enrolled student in the target class, recomputed from sessions on every
// call rather than cached per-student counters.
type MonitorService struct {
	sessions SessionStore
	exams    ExamStore
	students RosterStore
	bank     QuestionSource
	log      zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(sessions SessionStore, exams ExamStore, students RosterStore, bank QuestionSource, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		sessions: sessions,
		exams:    exams,
		students: students,
		bank:     bank,
		log:      log.With().Str("component", "monitor_service").Logger(),
	}
}

// MonitorRow is one student's live state on the dashboard.
type MonitorRow struct {
	StudentID       int                `json:"student_id"`
	StudentName     string             `json:"student_name"`
	ClassName       string             `json:"class_name"`
	Status          string             `json:"status"`
	IsLocked        bool               `json:"is_locked"`
	ViolationCount  int                `json:"violation_count"`
	CurrentQuestion int                `json:"current_question"`
	CorrectCount    int                `json:"correct_count"`
	WrongCount      int                `json:"wrong_count"`
	UnansweredCount int                `json:"unanswered_count"`
	EssayAnswered   int                `json:"essay_answered"`
	EssayTotal      int                `json:"essay_total"`
	Score           float64            `json:"score"`
	StartedAt       *time.Time         `json:"started_at"`
	FinishedAt      *time.Time         `json:"finished_at"`
	Answers         map[string]string  `json:"answers,omitempty"`
	Scores          map[string]float64 `json:"scores,omitempty"`
}

// MonitorSnapshot is the full dashboard payload for one exam.
type MonitorSnapshot struct {
	Exam          model.ExamMeta `json:"exam"`
	Students      []MonitorRow   `json:"students"`
	StartedCount  int            `json:"started_count"`
	FinishedCount int            `json:"finished_count"`
	LockedCount   int            `json:"locked_count"`
}

// Snapshot aggregates roster, sessions and the answer key into per-student
// rows. The three fetches are independent, so they run in parallel.
func (s *MonitorService) Snapshot(ctx context.Context, examID uuid.UUID) (*MonitorSnapshot, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	var (
		roster      []model.Student
		sessions    []model.ExamSession
		questions   []model.Question
		rosterErr   error
		sessionsErr error
		bankErr     error
		wg          sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		roster, rosterErr = s.students.ListAll(ctx)
	}()
	go func() {
		defer wg.Done()
		sessions, sessionsErr = s.sessions.ListByExam(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		questions, bankErr = s.bank.ListByBank(ctx, exam.QBankID)
	}()
	wg.Wait()

	if rosterErr != nil {
		return nil, fmt.Errorf("list students: %w", rosterErr)
	}
	if sessionsErr != nil {
		return nil, fmt.Errorf("list sessions: %w", sessionsErr)
	}
	if bankErr != nil {
		return nil, fmt.Errorf("list questions: %w", bankErr)
	}

	byStudent := make(map[int]*model.ExamSession, len(sessions))
	for i := range sessions {
		byStudent[sessions[i].StudentID] = &sessions[i]
	}

	snapshot := &MonitorSnapshot{Exam: exam.Meta()}

	for _, student := range roster {
		if !SameClass(student.ClassName, exam.TargetClass) {
			continue
		}
		row := buildMonitorRow(student, byStudent[student.ID], questions)
		switch row.Status {
		case string(model.SessionStatusOngoing):
			snapshot.StartedCount++
		case string(model.SessionStatusCompleted):
			snapshot.StartedCount++
			snapshot.FinishedCount++
		}
		if row.IsLocked {
			snapshot.LockedCount++
		}
		snapshot.Students = append(snapshot.Students, row)
	}

	return snapshot, nil
}

// buildMonitorRow recomputes one student's counters from the raw session
// state. A student without a session row appears as NOT_STARTED with every
// counter at zero.
func buildMonitorRow(student model.Student, session *model.ExamSession, questions []model.Question) MonitorRow {
	row := MonitorRow{
		StudentID:   student.ID,
		StudentName: student.Name,
		ClassName:   student.ClassName,
		Status:      string(model.StatusOf(session)),
	}

	for _, q := range questions {
		if q.QuestionType == model.QuestionTypeEssay {
			row.EssayTotal++
		}
	}

	if session == nil {
		row.UnansweredCount = countMultipleChoice(questions)
		return row
	}

	row.IsLocked = session.IsLocked
	row.ViolationCount = session.ViolationCount
	row.CurrentQuestion = session.CurrentQuestionIndex + 1
	row.Score = session.Score
	row.StartedAt = &session.StartedAt
	row.FinishedAt = session.FinishedAt
	row.Answers = session.Answers
	row.Scores = session.Scores

	for _, q := range questions {
		answer, answered := session.Answers[q.ID.String()]
		answered = answered && answer != ""

		switch q.QuestionType {
		case model.QuestionTypeMultipleChoice:
			switch {
			case !answered:
				row.UnansweredCount++
			case answer == q.CorrectAnswer:
				row.CorrectCount++
			default:
				row.WrongCount++
			}
		case model.QuestionTypeEssay:
			if answered {
				row.EssayAnswered++
			}
		}
	}

	return row
}

func countMultipleChoice(questions []model.Question) int {
	n := 0
	for _, q := range questions {
		if q.QuestionType == model.QuestionTypeMultipleChoice {
			n++
		}
	}
	return n
}
