package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// ExamSessionRepository handles exam session data access. All state-machine
// transitions are single conditional statements so that the lock check and the
// write are atomic per (exam_id, student_id) row.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, status, started_at, finished_at,
		 answers, current_question_index, score, scores,
		 is_locked, violation_count, violation_log`

func scanSession(row interface{ Scan(...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status, &s.StartedAt, &s.FinishedAt,
		&s.Answers, &s.CurrentQuestionIndex, &s.Score, &s.Scores,
		&s.IsLocked, &s.ViolationCount, &s.ViolationLog)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByExamAndStudent retrieves a session for a specific exam-student combination.
func (r *ExamSessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID,
	))
}

// Create inserts a new session. The unique constraint on (exam_id, student_id)
// plus ON CONFLICT DO NOTHING keeps creation at-most-once: a concurrent create
// surfaces as pgx.ErrNoRows, and the caller refetches the winner's row.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.StudentID, model.SessionStatusOngoing,
	).Scan(&s.ID, &s.StartedAt)
}

// SaveProgress overwrites the answers map and advisory question index.
// The guard clause makes a save after a concurrent lock or completion a
// no-op; false is returned so the caller can report the exact reason.
func (r *ExamSessionRepository) SaveProgress(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]string, currentIndex int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET answers = $3, current_question_index = $4
		 WHERE exam_id = $1 AND student_id = $2
		   AND status = $5 AND NOT is_locked`,
		examID, studentID, answers, currentIndex, model.SessionStatusOngoing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteWithAnswers finalizes a natural submission: the final answers map,
// score and per-question scores are persisted in one compare-and-set write.
// The lock flag is part of the guard, so a violation lock that lands after
// the caller's read still voids the submission. Returns false when the
// session was not ONGOING or was locked.
func (r *ExamSessionRepository) CompleteWithAnswers(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]string, score float64, scores map[string]float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $3, answers = $4, score = $5, scores = $6, finished_at = $7
		 WHERE exam_id = $1 AND student_id = $2 AND status = $8 AND NOT is_locked`,
		examID, studentID, model.SessionStatusCompleted, answers, score, scores,
		time.Now(), model.SessionStatusOngoing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Complete finalizes a session using whatever answers are already stored
// (the force-finish path). Same compare-and-set semantics as
// CompleteWithAnswers; the lock flag is deliberately not part of the guard.
func (r *ExamSessionRepository) Complete(ctx context.Context, examID uuid.UUID, studentID int, score float64, scores map[string]float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $3, score = $4, scores = $5, finished_at = $6
		 WHERE exam_id = $1 AND student_id = $2 AND status = $7`,
		examID, studentID, model.SessionStatusCompleted, score, scores,
		time.Now(), model.SessionStatusOngoing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RecordViolation appends one event to the violation log, raises the counter
// and optionally sets the sticky lock, all in a single statement. The counter
// only ever moves up: GREATEST keeps a stale or malicious client-supplied
// count from lowering it.
func (r *ExamSessionRepository) RecordViolation(ctx context.Context, examID uuid.UUID, studentID int, event model.ViolationEvent, count int, lock bool) (bool, error) {
	entry, err := json.Marshal([]model.ViolationEvent{event})
	if err != nil {
		return false, fmt.Errorf("marshal violation event: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET violation_log = violation_log || $3::jsonb,
		     violation_count = GREATEST(violation_count, $4),
		     is_locked = is_locked OR $5
		 WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID, entry, count, lock)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Unlock clears the lock and grants full amnesty: the counter returns to zero
// and the log is emptied.
func (r *ExamSessionRepository) Unlock(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET is_locked = FALSE, violation_count = 0, violation_log = '[]'::jsonb
		 WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// OverwriteScores replaces the per-question scores and the total, regardless
// of lock or completion status (the manual-correction path).
func (r *ExamSessionRepository) OverwriteScores(ctx context.Context, examID uuid.UUID, studentID int, scores map[string]float64, total float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET scores = $3, score = $4
		 WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID, scores, total)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the session row unconditionally. This is the only supported
// way to let a student re-attempt.
func (r *ExamSessionRepository) Delete(ctx context.Context, examID uuid.UUID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM exam_sessions WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID)
	return err
}

// ListByExam retrieves all sessions of an exam for monitoring aggregation.
func (r *ExamSessionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE exam_id = $1
		 ORDER BY started_at`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
