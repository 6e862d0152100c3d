package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// QuestionRepository handles question-bank data access. Bank CRUD lives in an
// external service; this core only reads.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetBank retrieves a question bank header (randomization flags included).
func (r *QuestionRepository) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, randomize_questions, randomize_options
		 FROM question_banks WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.RandomizeQuestions, &b.RandomizeOptions)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByBank retrieves all questions of a bank, ordered by order_num.
func (r *QuestionRepository) ListByBank(ctx context.Context, qbankID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, qbank_id, question_text, question_type, options, correct_answer, points, order_num
		 FROM questions WHERE qbank_id = $1
		 ORDER BY order_num`, qbankID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QBankID, &q.QuestionText, &q.QuestionType,
			&q.Options, &q.CorrectAnswer, &q.Points, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
