package service

import (
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// GradeResult is the outcome of deterministic auto-grading.
type GradeResult struct {
	TotalScore  float64            `json:"total_score"`
	PerQuestion map[string]float64 `json:"per_question"`
}

// Grade maps (questions, answers) to a total score and per-question breakdown.
// Multiple-choice answers must match the correct answer exactly (string
// equality, case-sensitive) to earn the question's points. Essay questions
// are awarded 0 here; points arrive later through manual correction.
// Pure function of its inputs: question order and any display-time
// randomization have no effect on the result.
func Grade(questions []model.Question, answers map[string]string) GradeResult {
	scores := make(map[string]float64, len(questions))
	var total float64

	for _, q := range questions {
		qid := q.ID.String()
		scores[qid] = 0

		if q.QuestionType != model.QuestionTypeMultipleChoice {
			continue
		}
		if ans, ok := answers[qid]; ok && ans == q.CorrectAnswer {
			scores[qid] = q.Points
			total += q.Points
		}
	}

	return GradeResult{TotalScore: total, PerQuestion: scores}
}

// SumScores totals a per-question score map. Used by manual correction, which
// replaces the stored breakdown wholesale and recomputes the total from it.
func SumScores(scores map[string]float64) float64 {
	var total float64
	for _, points := range scores {
		total += points
	}
	return total
}
