package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/rs/zerolog"
)

type lifecycleFixture struct {
	svc      *ExamSessionService
	sessions *memSessionStore
	exams    *memExamStore
	roster   *memRoster
	bank     *memQuestionSource
	exam     *model.Exam
	q1, q2   model.Question
	essay    model.Question
}

const (
	fixtureToken     = "MTK-2026"
	fixtureStudentID = 42
)

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	start := time.Now().Add(-1 * time.Hour)
	end := time.Now().Add(3 * time.Hour)
	qbankID := uuid.New()

	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           "Matematika Wajib",
		QBankID:         qbankID,
		TargetClass:     "X TKJ 1",
		ScheduledStart:  &start,
		ScheduledEnd:    &end,
		DurationMinutes: 90,
		EntryToken:      fixtureToken,
		Status:          model.ExamStatusOpen,
	}

	q1 := mcQuestion("B", 10)
	q1.QBankID = qbankID
	q2 := mcQuestion("C", 10)
	q2.QBankID = qbankID
	essay := model.Question{
		ID:           uuid.New(),
		QBankID:      qbankID,
		QuestionType: model.QuestionTypeEssay,
		Points:       20,
	}

	bank := &memQuestionSource{
		banks: map[uuid.UUID]*model.QuestionBank{
			qbankID: {ID: qbankID, Name: "MTK X"},
		},
		questions: map[uuid.UUID][]model.Question{
			qbankID: {q1, q2, essay},
		},
	}

	sessions := newMemSessionStore()
	exams := &memExamStore{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}}
	roster := &memRoster{students: map[int]*model.Student{
		fixtureStudentID: {ID: fixtureStudentID, Name: "Budi", ClassName: "X TKJ 1"},
		77:               {ID: 77, Name: "Sari", ClassName: "XI RPL 1"},
	}}
	svc := NewExamSessionService(
		sessions,
		exams,
		roster,
		bank,
		&memPaperSource{bank: bank},
		zerolog.Nop(),
	)

	return &lifecycleFixture{
		svc: svc, sessions: sessions, exams: exams, roster: roster, bank: bank,
		exam: exam, q1: q1, q2: q2, essay: essay,
	}
}

// ----------------------------------------------------------------
// Token gate
// ----------------------------------------------------------------

func TestVerifyAndStartCreatesSession(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	session, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	if session.Status != model.SessionStatusOngoing {
		t.Errorf("status = %s, want ONGOING", session.Status)
	}
	if session.StartedAt.IsZero() {
		t.Error("StartedAt not set on creation")
	}
	if session.ViolationCount != 0 || session.IsLocked {
		t.Error("fresh session should have no violation state")
	}
}

func TestVerifyAndStartRejectsWrongToken(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.VerifyAndStart(context.Background(), f.exam.ID, fixtureStudentID, "WRONG", false)
	if !errors.Is(err, ErrEntryTokenMismatch) {
		t.Fatalf("err = %v, want ErrEntryTokenMismatch", err)
	}
}

func TestVerifyAndStartTokenCaseInsensitive(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.VerifyAndStart(context.Background(), f.exam.ID, fixtureStudentID, "mtk-2026", false)
	if err != nil {
		t.Fatalf("lowercase token rejected: %v", err)
	}
}

func TestVerifyAndStartIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("first VerifyAndStart: %v", err)
	}
	second, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("second VerifyAndStart: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("re-verification created a new session: %s vs %s", first.ID, second.ID)
	}
	if !first.StartedAt.Equal(second.StartedAt) {
		t.Error("re-verification moved StartedAt")
	}
}

func TestVerifyAndStartEnforcesWindow(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	future := time.Now().Add(2 * time.Hour)
	f.exam.ScheduledStart = &future
	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); !errors.Is(err, ErrExamNotYetOpen) {
		t.Fatalf("before window: err = %v, want ErrExamNotYetOpen", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	passed := time.Now().Add(-1 * time.Hour)
	f.exam.ScheduledStart = &past
	f.exam.ScheduledEnd = &passed
	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); !errors.Is(err, ErrExamExpired) {
		t.Fatalf("after window: err = %v, want ErrExamExpired", err)
	}
}

func TestVerifyAndStartResetDiscardsProgress(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	answers := map[string]string{f.q1.ID.String(): "B"}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 1, false); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	if _, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "tab switch", 1, false); err != nil {
		t.Fatalf("ReportViolation: %v", err)
	}

	fresh, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, true)
	if err != nil {
		t.Fatalf("reset VerifyAndStart: %v", err)
	}
	if fresh.ID == first.ID {
		t.Error("reset reused the old session row")
	}
	if len(fresh.Answers) != 0 {
		t.Errorf("reset kept %d answers", len(fresh.Answers))
	}
	if fresh.ViolationCount != 0 || len(fresh.ViolationLog) != 0 {
		t.Error("reset kept violation state")
	}
}

func TestVerifyAndStartLockedRefusesReset(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	if _, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "left fullscreen", 3, true); err != nil {
		t.Fatalf("ReportViolation: %v", err)
	}

	// A locked student must not be able to bail out through self-reset.
	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, true); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("err = %v, want ErrSessionLocked", err)
	}
}

// ----------------------------------------------------------------
// Fetch and save
// ----------------------------------------------------------------

func TestFetchForStudentLazyStart(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	result, err := f.svc.FetchForStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("FetchForStudent: %v", err)
	}
	if result.Session == nil || result.Session.Status != model.SessionStatusOngoing {
		t.Fatal("direct-link fetch did not start a session")
	}
	if len(result.Questions) != 3 {
		t.Errorf("paper has %d questions, want 3", len(result.Questions))
	}
	if result.RemainingSeconds <= 0 || result.RemainingSeconds > 90*60 {
		t.Errorf("RemainingSeconds = %d, want within (0, 5400]", result.RemainingSeconds)
	}
	for _, q := range result.Questions {
		if q.QuestionType == model.QuestionTypeMultipleChoice && len(q.Options) == 0 {
			t.Error("multiple choice question shipped without options")
		}
	}
}

func TestFetchForStudentClassMismatch(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.FetchForStudent(context.Background(), f.exam.ID, 77)
	if !errors.Is(err, ErrClassMismatch) {
		t.Fatalf("err = %v, want ErrClassMismatch", err)
	}
}

func TestFetchForStudentEquivalentClassNotation(t *testing.T) {
	f := newLifecycleFixture(t)
	f.exam.TargetClass = "10 TKJ 1" // student record says "X TKJ 1"

	if _, err := f.svc.FetchForStudent(context.Background(), f.exam.ID, fixtureStudentID); err != nil {
		t.Fatalf("equivalent class notation rejected: %v", err)
	}
}

func TestSaveProgressOverwritesAnswers(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}

	first := map[string]string{f.q1.ID.String(): "A", f.q2.ID.String(): "C"}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, first, 1, false); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Second save drops q2: the map replaces wholesale, no merging.
	second := map[string]string{f.q1.ID.String(): "B"}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, second, 0, false); err != nil {
		t.Fatalf("second save: %v", err)
	}

	session, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Answers) != 1 || session.Answers[f.q1.ID.String()] != "B" {
		t.Errorf("answers = %v, want only q1=B", session.Answers)
	}
	if session.CurrentQuestionIndex != 0 {
		t.Errorf("CurrentQuestionIndex = %d, want 0", session.CurrentQuestionIndex)
	}
}

func TestSubmitGradesAndCompletes(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}

	answers := map[string]string{
		f.q1.ID.String():    "B", // correct
		f.q2.ID.String():    "A", // wrong
		f.essay.ID.String(): "jawaban panjang",
	}
	result, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 2, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != model.SessionStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", result.Status)
	}
	if result.Score != 10 {
		t.Errorf("score = %v, want 10", result.Score)
	}
	if result.Scores[f.essay.ID.String()] != 0 {
		t.Error("essay auto-graded above zero")
	}

	// Repeating the finished submission is a no-op returning the stored score.
	again, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 2, true)
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if again.Score != 10 || again.Status != model.SessionStatusCompleted {
		t.Errorf("repeat submit = %+v, want stored result", again)
	}

	// Plain saves after completion are rejected.
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 2, false); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("save after completion: err = %v, want ErrAlreadyCompleted", err)
	}
}

// lockingQuestionSource flips the session lock when the grader reads the
// bank, emulating a violation report landing between the submit's lock
// check and the finalize write.
type lockingQuestionSource struct {
	*memQuestionSource
	sessions  *memSessionStore
	examID    uuid.UUID
	studentID int
}

func (l *lockingQuestionSource) ListByBank(ctx context.Context, qbankID uuid.UUID) ([]model.Question, error) {
	_, err := l.sessions.RecordViolation(ctx, l.examID, l.studentID,
		model.ViolationEvent{Time: time.Now(), Reason: "tab switch"}, 1, true)
	if err != nil {
		return nil, err
	}
	return l.memQuestionSource.ListByBank(ctx, qbankID)
}

func TestSubmitVoidedByConcurrentLock(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}

	racing := NewExamSessionService(
		f.sessions,
		f.exams,
		f.roster,
		&lockingQuestionSource{
			memQuestionSource: f.bank,
			sessions:          f.sessions,
			examID:            f.exam.ID,
			studentID:         fixtureStudentID,
		},
		&memPaperSource{bank: f.bank},
		zerolog.Nop(),
	)

	answers := map[string]string{f.q1.ID.String(): "B"}
	_, err := racing.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 0, true)
	if !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("submit racing a lock: err = %v, want ErrSessionLocked", err)
	}

	stored, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("refetch session: %v", err)
	}
	if stored.Status != model.SessionStatusOngoing {
		t.Errorf("status = %s, want ONGOING", stored.Status)
	}
	if !stored.IsLocked {
		t.Error("lock flag lost")
	}
	if len(stored.Answers) != 0 {
		t.Errorf("locked submission persisted answers: %v", stored.Answers)
	}
	if stored.Score != 0 {
		t.Errorf("locked submission persisted score %v", stored.Score)
	}
}

// ----------------------------------------------------------------
// Violations and lock
// ----------------------------------------------------------------

func TestViolationCountMonotonic(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}

	if _, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "tab switch", 1, false); err != nil {
		t.Fatalf("first violation: %v", err)
	}
	session, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "devtools opened", 3, false)
	if err != nil {
		t.Fatalf("second violation: %v", err)
	}

	if session.ViolationCount != 3 {
		t.Errorf("ViolationCount = %d, want 3", session.ViolationCount)
	}
	if len(session.ViolationLog) != 2 {
		t.Errorf("ViolationLog has %d entries, want 2", len(session.ViolationLog))
	}

	// A stale lower count must not wind the counter back.
	session, err = f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "tab switch", 2, false)
	if err != nil {
		t.Fatalf("third violation: %v", err)
	}
	if session.ViolationCount != 3 {
		t.Errorf("counter regressed to %d", session.ViolationCount)
	}
}

func TestLockStickyUntilUnlock(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}

	session, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "left fullscreen", 3, true)
	if err != nil {
		t.Fatalf("ReportViolation: %v", err)
	}
	if !session.IsLocked {
		t.Fatal("session not locked after lock=true report")
	}

	answers := map[string]string{f.q1.ID.String(): "B"}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 0, false); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("save on locked session: err = %v, want ErrSessionLocked", err)
	}
	if _, err := f.svc.FetchForStudent(ctx, f.exam.ID, fixtureStudentID); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("fetch on locked session: err = %v, want ErrSessionLocked", err)
	}

	// Further lock=false reports do not release the lock.
	session, err = f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "tab switch", 1, false)
	if err != nil {
		t.Fatalf("post-lock violation: %v", err)
	}
	if !session.IsLocked {
		t.Error("lock released by a non-locking report")
	}

	if err := f.svc.Unlock(ctx, f.exam.ID, fixtureStudentID); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	unlocked, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if unlocked.IsLocked || unlocked.ViolationCount != 0 || len(unlocked.ViolationLog) != 0 {
		t.Errorf("unlock is not a full amnesty: %+v", unlocked)
	}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 0, false); err != nil {
		t.Fatalf("save after unlock: %v", err)
	}
}

// ----------------------------------------------------------------
// Supervisory operations
// ----------------------------------------------------------------

func TestForceFinishGradesStoredAnswers(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	answers := map[string]string{f.q1.ID.String(): "B", f.q2.ID.String(): "C"}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 1, false); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	score, err := f.svc.ForceFinish(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("ForceFinish: %v", err)
	}
	if score != 20 {
		t.Errorf("score = %v, want 20", score)
	}

	session, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	finishedAt := session.FinishedAt

	// Idempotent: the second finish neither regrades nor moves the end time.
	score, err = f.svc.ForceFinish(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("second ForceFinish: %v", err)
	}
	if score != 20 {
		t.Errorf("second finish score = %v, want 20", score)
	}
	session, _ = f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if !session.FinishedAt.Equal(*finishedAt) {
		t.Error("second finish moved FinishedAt")
	}
}

func TestForceFinishIgnoresLock(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	if _, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "left fullscreen", 3, true); err != nil {
		t.Fatalf("ReportViolation: %v", err)
	}

	if _, err := f.svc.ForceFinish(ctx, f.exam.ID, fixtureStudentID); err != nil {
		t.Fatalf("ForceFinish on locked session: %v", err)
	}
}

func TestResetSessionAllowsRestart(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	if _, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, map[string]string{f.q1.ID.String(): "B"}, 0, true); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.svc.ResetSession(ctx, f.exam.ID, fixtureStudentID); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}

	fresh, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false)
	if err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
	if fresh.ID == first.ID {
		t.Error("reset did not discard the old session")
	}
	if fresh.Status != model.SessionStatusOngoing || len(fresh.Answers) != 0 {
		t.Errorf("restarted session not fresh: %+v", fresh)
	}
}

func TestSubmitScoreManualCorrection(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	answers := map[string]string{
		f.q1.ID.String():    "B",
		f.essay.ID.String(): "uraian lengkap",
	}
	submitted, err := f.svc.SaveProgress(ctx, f.exam.ID, fixtureStudentID, answers, 2, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Score != 10 {
		t.Fatalf("auto score = %v, want 10", submitted.Score)
	}

	// Teacher reviews the essay and grants 15 of its 20 points.
	corrected := map[string]float64{
		f.q1.ID.String():    10,
		f.q2.ID.String():    0,
		f.essay.ID.String(): 15,
	}
	total, err := f.svc.SubmitScore(ctx, f.exam.ID, fixtureStudentID, corrected)
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	if total != 25 {
		t.Errorf("corrected total = %v, want 25", total)
	}

	session, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Score != 25 || session.Scores[f.essay.ID.String()] != 15 {
		t.Errorf("stored scores after correction: total=%v scores=%v", session.Score, session.Scores)
	}
}

func TestClockReflectsSessionState(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VerifyAndStart(ctx, f.exam.ID, fixtureStudentID, fixtureToken, false); err != nil {
		t.Fatalf("VerifyAndStart: %v", err)
	}
	if _, err := f.svc.ReportViolation(ctx, f.exam.ID, fixtureStudentID, "tab switch", 2, false); err != nil {
		t.Fatalf("ReportViolation: %v", err)
	}

	clock, err := f.svc.Clock(ctx, f.exam.ID, fixtureStudentID)
	if err != nil {
		t.Fatalf("Clock: %v", err)
	}
	if clock.Status != model.SessionStatusOngoing {
		t.Errorf("status = %s, want ONGOING", clock.Status)
	}
	if clock.ViolationCount != 2 {
		t.Errorf("ViolationCount = %d, want 2", clock.ViolationCount)
	}
	if clock.RemainingSeconds <= 0 {
		t.Errorf("RemainingSeconds = %d, want positive", clock.RemainingSeconds)
	}
}
