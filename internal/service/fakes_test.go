package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// In-memory stand-ins for the pgx repositories. Each fake mirrors the
// guarded-update semantics of its SQL counterpart, including the
// no-row-returned signal on conflicting inserts.

type sessionKey struct {
	examID    uuid.UUID
	studentID int
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*model.ExamSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[sessionKey]*model.ExamSession)}
}

func cloneSession(s *model.ExamSession) *model.ExamSession {
	c := *s
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Scores = make(map[string]float64, len(s.Scores))
	for k, v := range s.Scores {
		c.Scores[k] = v
	}
	c.ViolationLog = append([]model.ViolationEvent(nil), s.ViolationLog...)
	return &c
}

func (m *memSessionStore) GetByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneSession(s), nil
}

func (m *memSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{s.ExamID, s.StudentID}
	if _, exists := m.sessions[key]; exists {
		return pgx.ErrNoRows
	}
	s.ID = uuid.New()
	s.StartedAt = time.Now()
	m.sessions[key] = cloneSession(s)
	return nil
}

func (m *memSessionStore) SaveProgress(_ context.Context, examID uuid.UUID, studentID int, answers map[string]string, currentIndex int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok || s.Status != model.SessionStatusOngoing || s.IsLocked {
		return false, nil
	}
	s.Answers = make(map[string]string, len(answers))
	for k, v := range answers {
		s.Answers[k] = v
	}
	s.CurrentQuestionIndex = currentIndex
	return true, nil
}

func (m *memSessionStore) CompleteWithAnswers(_ context.Context, examID uuid.UUID, studentID int, answers map[string]string, score float64, scores map[string]float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok || s.Status != model.SessionStatusOngoing || s.IsLocked {
		return false, nil
	}
	s.Answers = make(map[string]string, len(answers))
	for k, v := range answers {
		s.Answers[k] = v
	}
	m.finalize(s, score, scores)
	return true, nil
}

func (m *memSessionStore) Complete(_ context.Context, examID uuid.UUID, studentID int, score float64, scores map[string]float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok || s.Status != model.SessionStatusOngoing {
		return false, nil
	}
	m.finalize(s, score, scores)
	return true, nil
}

func (m *memSessionStore) finalize(s *model.ExamSession, score float64, scores map[string]float64) {
	now := time.Now()
	s.Status = model.SessionStatusCompleted
	s.FinishedAt = &now
	s.Score = score
	s.Scores = make(map[string]float64, len(scores))
	for k, v := range scores {
		s.Scores[k] = v
	}
}

func (m *memSessionStore) RecordViolation(_ context.Context, examID uuid.UUID, studentID int, event model.ViolationEvent, count int, lock bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok {
		return false, nil
	}
	s.ViolationLog = append(s.ViolationLog, event)
	if count > s.ViolationCount {
		s.ViolationCount = count
	}
	s.IsLocked = s.IsLocked || lock
	return true, nil
}

func (m *memSessionStore) Unlock(_ context.Context, examID uuid.UUID, studentID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok {
		return false, nil
	}
	s.IsLocked = false
	s.ViolationCount = 0
	s.ViolationLog = nil
	return true, nil
}

func (m *memSessionStore) OverwriteScores(_ context.Context, examID uuid.UUID, studentID int, scores map[string]float64, total float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{examID, studentID}]
	if !ok {
		return false, nil
	}
	s.Scores = make(map[string]float64, len(scores))
	for k, v := range scores {
		s.Scores[k] = v
	}
	s.Score = total
	return true, nil
}

func (m *memSessionStore) Delete(_ context.Context, examID uuid.UUID, studentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{examID, studentID})
	return nil
}

func (m *memSessionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.ExamSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ExamSession
	for key, s := range m.sessions {
		if key.examID == examID {
			out = append(out, *cloneSession(s))
		}
	}
	return out, nil
}

type memExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func (m *memExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

func (m *memExamStore) ListOpen(_ context.Context) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range m.exams {
		if e.Status == model.ExamStatusOpen {
			out = append(out, *e)
		}
	}
	return out, nil
}

type memRoster struct {
	students map[int]*model.Student
}

func (m *memRoster) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *memRoster) ListAll(_ context.Context) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, nil
}

type memQuestionSource struct {
	banks     map[uuid.UUID]*model.QuestionBank
	questions map[uuid.UUID][]model.Question
}

func (m *memQuestionSource) GetBank(_ context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b, ok := m.banks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (m *memQuestionSource) ListByBank(_ context.Context, qbankID uuid.UUID) ([]model.Question, error) {
	return append([]model.Question(nil), m.questions[qbankID]...), nil
}

// memPaperSource builds the paper straight from the question source,
// bypassing the redis cache.
type memPaperSource struct {
	bank *memQuestionSource
}

func (m *memPaperSource) GetPaper(ctx context.Context, exam *model.Exam) (*model.ExamPaper, error) {
	bank, err := m.bank.GetBank(ctx, exam.QBankID)
	if err != nil {
		return nil, err
	}
	questions, err := m.bank.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return nil, err
	}
	paper := &model.ExamPaper{
		ExamID:             exam.ID,
		Title:              exam.Title,
		DurationMinutes:    exam.DurationMinutes,
		RandomizeQuestions: bank.RandomizeQuestions,
		RandomizeOptions:   bank.RandomizeOptions,
	}
	for _, q := range questions {
		paper.Questions = append(paper.Questions, q.Sanitize())
	}
	return paper, nil
}
