package model

import (
	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

// QuestionOption is a single answer option in its uniform display form.
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question represents a single bank question. CorrectAnswer and Points are
// ground truth for grading and must never reach a student-facing payload.
type Question struct {
	ID            uuid.UUID        `json:"id"`
	QBankID       uuid.UUID        `json:"qbank_id"`
	QuestionText  string           `json:"question_text"`
	QuestionType  QuestionType     `json:"question_type"`
	Options       []QuestionOption `json:"options"`
	CorrectAnswer string           `json:"correct_answer"`
	Points        float64          `json:"points"`
	OrderNum      int              `json:"order_num"`
}

// QuestionForStudent is a question without the correct answer.
type QuestionForStudent struct {
	ID           uuid.UUID        `json:"id"`
	QuestionText string           `json:"question_text"`
	QuestionType QuestionType     `json:"question_type"`
	Options      []QuestionOption `json:"options"`
	Points       float64          `json:"points"`
	OrderNum     int              `json:"order_num"`
}

// Sanitize converts a bank question into its student-facing form.
func (q *Question) Sanitize() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Points:       q.Points,
		OrderNum:     q.OrderNum,
	}
}

// QuestionBank represents a collection of questions with randomization flags.
type QuestionBank struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	RandomizeQuestions bool      `json:"randomize_questions"`
	RandomizeOptions   bool      `json:"randomize_options"`
}

// ExamPaper is the cached student-facing payload (no correct answers).
type ExamPaper struct {
	ExamID             uuid.UUID            `json:"exam_id"`
	Title              string               `json:"title"`
	DurationMinutes    int                  `json:"duration_minutes"`
	RandomizeQuestions bool                 `json:"randomize_questions"`
	RandomizeOptions   bool                 `json:"randomize_options"`
	Questions          []QuestionForStudent `json:"questions"`
}
