package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/config"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoQuestions means an exam points at an empty or missing bank.
var ErrNoQuestions = errors.New("exam has no questions")

// ExamService adapts the external Question Source: it builds the sanitized
// student paper from the bank and caches it in Redis. The bank changes only
// when a teacher edits it (out of core scope), so the cache is warmed at
// startup and refreshed on demand; a miss falls back to PostgreSQL and
// self-heals the cache.
type ExamService struct {
	exams     ExamCatalog
	questions QuestionSource
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamCatalog, questions QuestionSource, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// GetPaper returns the sanitized paper for an exam, from cache when possible.
func (s *ExamService) GetPaper(ctx context.Context, exam *model.Exam) (*model.ExamPaper, error) {
	key := config.CacheKey.ExamPaperKey(exam.ID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		paper := &model.ExamPaper{}
		if err := json.Unmarshal(data, paper); err == nil {
			return paper, nil
		}
		// Corrupt cache entry: rebuild below.
		s.log.Warn().Str("exam_id", exam.ID.String()).Msg("Discarding unreadable cached paper")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get cached paper: %w", err)
	}

	paper, err := s.buildPaper(ctx, exam)
	if err != nil {
		return nil, err
	}

	// Self-heal the cache so the next fetch is fast. Best effort.
	if raw, err := json.Marshal(paper); err == nil {
		_ = s.rdb.Set(ctx, key, raw, 0).Err()
	}

	return paper, nil
}

// WarmExamCache loads an exam's paper and answer key from PostgreSQL into Redis.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	paper, err := s.buildPaper(ctx, exam)
	if err != nil {
		return err
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}

	questions, err := s.questions.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}

	answerKey := make(map[string]interface{}, len(questions))
	points := make(map[string]interface{}, len(questions))
	for _, q := range questions {
		if q.QuestionType == model.QuestionTypeMultipleChoice {
			answerKey[q.ID.String()] = q.CorrectAnswer
		}
		points[q.ID.String()] = fmt.Sprintf("%g", q.Points)
	}

	examID := exam.ID.String()
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPaperKey(examID), paperJSON, 0)
	pipe.Del(ctx, config.CacheKey.ExamAnswerKeyKey(examID))
	if len(answerKey) > 0 {
		pipe.HSet(ctx, config.CacheKey.ExamAnswerKeyKey(examID), answerKey)
	}
	pipe.Del(ctx, config.CacheKey.ExamPointsKey(examID))
	if len(points) > 0 {
		pipe.HSet(ctx, config.CacheKey.ExamPointsKey(examID), points)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", examID).
		Int("questions", len(paper.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all open exams into Redis on application startup.
// This prevents lazy-loading races under thundering herd traffic.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.exams.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No open exams to prewarm")
		return nil
	}

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", exams[i].ID.String()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

func (s *ExamService) buildPaper(ctx context.Context, exam *model.Exam) (*model.ExamPaper, error) {
	bank, err := s.questions.GetBank(ctx, exam.QBankID)
	if err != nil {
		return nil, fmt.Errorf("get question bank: %w", err)
	}

	questions, err := s.questions.ListByBank(ctx, exam.QBankID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	sanitized := make([]model.QuestionForStudent, len(questions))
	for i, q := range questions {
		sanitized[i] = q.Sanitize()
	}

	return &model.ExamPaper{
		ExamID:             exam.ID,
		Title:              exam.Title,
		DurationMinutes:    exam.DurationMinutes,
		RandomizeQuestions: bank.RandomizeQuestions,
		RandomizeOptions:   bank.RandomizeOptions,
		Questions:          sanitized,
	}, nil
}
