package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/rs/zerolog"
)

// ExamSessionService is the server-authoritative state machine for a single
// student's attempt at a single exam: token-gated creation, elapsed-time
// authority, answer persistence, violation tracking and deterministic
// auto-grading.
type ExamSessionService struct {
	sessions SessionStore
	exams    ExamStore
	students RosterStore
	bank     QuestionSource
	papers   PaperSource
	log      zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	sessions SessionStore,
	exams ExamStore,
	students RosterStore,
	bank QuestionSource,
	papers PaperSource,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessions: sessions,
		exams:    exams,
		students: students,
		bank:     bank,
		papers:   papers,
		log:      log.With().Str("component", "exam_session_service").Logger(),
	}
}

// TakeExamResult is everything a student client needs to render an attempt.
type TakeExamResult struct {
	Exam             model.ExamMeta             `json:"exam"`
	Questions        []model.QuestionForStudent `json:"questions"`
	Session          *model.ExamSession         `json:"session"`
	RemainingSeconds int64                      `json:"remaining_seconds"`
}

// SubmitResult reports the outcome of a save or submission.
type SubmitResult struct {
	Status model.SessionStatus `json:"status"`
	Score  float64             `json:"score"`
	Scores map[string]float64  `json:"scores,omitempty"`
}

// SessionClock is the read-only heartbeat pushed over the session stream.
type SessionClock struct {
	Status           model.SessionStatus `json:"status"`
	RemainingSeconds int64               `json:"remaining_seconds"`
	IsLocked         bool                `json:"is_locked"`
	ViolationCount   int                 `json:"violation_count"`
}

// ----------------------------------------------------------------
// Token gate
// ----------------------------------------------------------------

// VerifyAndStart validates the entry token and the exam's scheduled window,
// then creates or resumes the student's session. Idempotent for an
// already-ongoing unlocked session. A locked session refuses everything,
// including reset: only an explicit unlock lets the student back in.
func (s *ExamSessionService) VerifyAndStart(ctx context.Context, examID uuid.UUID, studentID int, token string, reset bool) (*model.ExamSession, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	now := time.Now()
	if exam.ScheduledStart != nil && now.Before(*exam.ScheduledStart) {
		return nil, ErrExamNotYetOpen
	}
	if exam.ScheduledEnd != nil && now.After(*exam.ScheduledEnd) {
		return nil, ErrExamExpired
	}

	if !strings.EqualFold(token, exam.EntryToken) {
		return nil, ErrEntryTokenMismatch
	}

	existing, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	if existing != nil {
		if existing.IsLocked {
			return nil, ErrSessionLocked
		}
		if !reset {
			// Already joined: no-op success, same row.
			return existing, nil
		}
		// Hard reset: forfeit all prior progress and start over.
		if err := s.sessions.Delete(ctx, examID, studentID); err != nil {
			return nil, fmt.Errorf("reset session: %w", err)
		}
		s.log.Info().
			Str("exam_id", examID.String()).
			Int("student_id", studentID).
			Msg("Session reset via token gate")
	}

	return s.createSession(ctx, examID, studentID)
}

// createSession inserts a fresh session, recovering the winner's row when two
// requests race on the unique (exam_id, student_id) key.
func (s *ExamSessionService) createSession(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	session := &model.ExamSession{
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.SessionStatusOngoing,
		Answers:   map[string]string{},
		Scores:    map[string]float64{},
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, fetchErr := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent create detected, but fetch failed: %w", fetchErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// ----------------------------------------------------------------
// Session lifecycle
// ----------------------------------------------------------------

// FetchForStudent returns the exam header, the sanitized question paper and
// the student's saved session. If no session exists yet and the window is
// open, one is created lazily (direct-link fallback). Option and question
// order are reshuffled on every fetch when the bank asks for randomization;
// clients must not assume order stability across reloads.
func (s *ExamSessionService) FetchForStudent(ctx context.Context, examID uuid.UUID, studentID int) (*TakeExamResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	if !SameClass(student.ClassName, exam.TargetClass) {
		return nil, ErrClassMismatch
	}

	now := time.Now()

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get session: %w", err)
		}
		// Direct-link fallback: start lazily while the window is open.
		if exam.ScheduledStart != nil && now.Before(*exam.ScheduledStart) {
			return nil, ErrExamNotYetOpen
		}
		if exam.ScheduledEnd != nil && now.After(*exam.ScheduledEnd) {
			return nil, ErrExamExpired
		}
		session, err = s.createSession(ctx, examID, studentID)
		if err != nil {
			return nil, err
		}
	}

	if session.IsLocked {
		return nil, ErrSessionLocked
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	paper, err := s.papers.GetPaper(ctx, exam)
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}

	return &TakeExamResult{
		Exam:             exam.Meta(),
		Questions:        shufflePaper(paper),
		Session:          session,
		RemainingSeconds: RemainingSeconds(session.StartedAt, exam.DurationMinutes, now),
	}, nil
}

// shufflePaper applies the bank's randomization flags to a fresh copy of the
// paper's questions. The stored order is never mutated.
func shufflePaper(paper *model.ExamPaper) []model.QuestionForStudent {
	questions := make([]model.QuestionForStudent, len(paper.Questions))
	copy(questions, paper.Questions)

	if paper.RandomizeQuestions {
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	if paper.RandomizeOptions {
		for i := range questions {
			options := make([]model.QuestionOption, len(questions[i].Options))
			copy(options, questions[i].Options)
			rand.Shuffle(len(options), func(a, b int) {
				options[a], options[b] = options[b], options[a]
			})
			questions[i].Options = options
		}
	}

	return questions
}

// SaveProgress overwrites the answers map wholesale (retry-with-same-payload
// is safe). With finished=true it grades fully in memory, then finalizes with
// a single compare-and-set write; repeating a finished submission is a no-op
// that returns the stored score.
func (s *ExamSessionService) SaveProgress(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]string, currentIndex int, finished bool) (*SubmitResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsLocked {
		return nil, ErrSessionLocked
	}

	if answers == nil {
		answers = map[string]string{}
	}

	if !finished {
		saved, err := s.sessions.SaveProgress(ctx, examID, studentID, answers, currentIndex)
		if err != nil {
			return nil, fmt.Errorf("save progress: %w", err)
		}
		if !saved {
			// The guarded update lost to a concurrent lock or completion.
			return nil, s.explainRejectedWrite(ctx, examID, studentID)
		}
		return &SubmitResult{Status: model.SessionStatusOngoing}, nil
	}

	if session.Status == model.SessionStatusCompleted {
		return &SubmitResult{
			Status: model.SessionStatusCompleted,
			Score:  session.Score,
			Scores: session.Scores,
		}, nil
	}

	// Grade entirely in memory before the single persist call, so a store
	// failure aborts with no state change instead of a half-applied
	// completion.
	questions, err := s.bank.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	result := Grade(questions, answers)

	completed, err := s.sessions.CompleteWithAnswers(ctx, examID, studentID, answers, result.TotalScore, result.PerQuestion)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if !completed {
		// Lost the CAS to a concurrent lock or finalization. A lock voids
		// the submission; a finalization repeats as a no-op.
		current, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
		if err != nil {
			return nil, fmt.Errorf("refetch session: %w", err)
		}
		if current.IsLocked {
			return nil, ErrSessionLocked
		}
		if current.Status == model.SessionStatusCompleted {
			return &SubmitResult{Status: current.Status, Score: current.Score, Scores: current.Scores}, nil
		}
		return nil, ErrSessionNotFound
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Float64("score", result.TotalScore).
		Msg("Session completed")

	return &SubmitResult{
		Status: model.SessionStatusCompleted,
		Score:  result.TotalScore,
		Scores: result.PerQuestion,
	}, nil
}

// explainRejectedWrite turns a guarded-update miss into the precise error.
func (s *ExamSessionService) explainRejectedWrite(ctx context.Context, examID uuid.UUID, studentID int) error {
	current, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("inspect session: %w", err)
	}
	if current.IsLocked {
		return ErrSessionLocked
	}
	if current.Status == model.SessionStatusCompleted {
		return ErrAlreadyCompleted
	}
	return ErrSessionNotFound
}

// ForceFinish finalizes a session with whatever answers are stored. It is a
// supervisory override: the lock does not block it. Finishing an already
// completed session returns the existing score untouched.
func (s *ExamSessionService) ForceFinish(ctx context.Context, examID uuid.UUID, studentID int) (float64, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrExamNotFound
		}
		return 0, fmt.Errorf("get exam: %w", err)
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("get session: %w", err)
	}

	if session.Status == model.SessionStatusCompleted {
		return session.Score, nil
	}

	questions, err := s.bank.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}
	result := Grade(questions, session.Answers)

	completed, err := s.sessions.Complete(ctx, examID, studentID, result.TotalScore, result.PerQuestion)
	if err != nil {
		return 0, fmt.Errorf("complete session: %w", err)
	}
	if !completed {
		current, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
		if err != nil {
			return 0, fmt.Errorf("refetch completed session: %w", err)
		}
		return current.Score, nil
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Float64("score", result.TotalScore).
		Msg("Session force-finished")

	return result.TotalScore, nil
}

// ResetSession deletes the session row unconditionally. The student can then
// restart from a blank state through the token gate.
func (s *ExamSessionService) ResetSession(ctx context.Context, examID uuid.UUID, studentID int) error {
	if err := s.sessions.Delete(ctx, examID, studentID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Msg("Session reset")
	return nil
}

// Clock returns the heartbeat state for the session stream. Read-only.
func (s *ExamSessionService) Clock(ctx context.Context, examID uuid.UUID, studentID int) (*SessionClock, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &SessionClock{
		Status:           session.Status,
		RemainingSeconds: RemainingSeconds(session.StartedAt, exam.DurationMinutes, time.Now()),
		IsLocked:         session.IsLocked,
		ViolationCount:   session.ViolationCount,
	}, nil
}

// ----------------------------------------------------------------
// Violation tracking
// ----------------------------------------------------------------

// ReportViolation appends an anti-cheating event to the session's log,
// raises the counter and, when asked, locks the session. The lock is sticky
// until an explicit unlock. The append, the counter and the lock land in one
// atomic store write, so a save racing a locking report can never slip in
// after the lock.
func (s *ExamSessionService) ReportViolation(ctx context.Context, examID uuid.UUID, studentID int, reason string, count int, lock bool) (*model.ExamSession, error) {
	event := model.ViolationEvent{Time: time.Now(), Reason: reason}

	recorded, err := s.sessions.RecordViolation(ctx, examID, studentID, event, count, lock)
	if err != nil {
		return nil, fmt.Errorf("record violation: %w", err)
	}
	if !recorded {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("refetch session: %w", err)
	}

	logEvent := s.log.Warn().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Str("reason", reason).
		Int("violation_count", session.ViolationCount)
	if lock {
		logEvent.Bool("locked", true)
	}
	logEvent.Msg("Violation reported")

	return session, nil
}

// Unlock clears the lock and wipes the violation state entirely: count back
// to zero, log emptied. A full amnesty, not a partial one.
func (s *ExamSessionService) Unlock(ctx context.Context, examID uuid.UUID, studentID int) error {
	unlocked, err := s.sessions.Unlock(ctx, examID, studentID)
	if err != nil {
		return fmt.Errorf("unlock session: %w", err)
	}
	if !unlocked {
		return ErrSessionNotFound
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Msg("Session unlocked")
	return nil
}

// ----------------------------------------------------------------
// Manual correction
// ----------------------------------------------------------------

// SubmitScore replaces the per-question score breakdown wholesale and
// recomputes the total, regardless of lock or completion status. This is how
// essay answers receive their points after teacher review.
func (s *ExamSessionService) SubmitScore(ctx context.Context, examID uuid.UUID, studentID int, scores map[string]float64) (float64, error) {
	total := SumScores(scores)

	updated, err := s.sessions.OverwriteScores(ctx, examID, studentID, scores, total)
	if err != nil {
		return 0, fmt.Errorf("overwrite scores: %w", err)
	}
	if !updated {
		return 0, ErrSessionNotFound
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Float64("score", total).
		Msg("Manual scores submitted")

	return total, nil
}
