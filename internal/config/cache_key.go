package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPaperKey returns the cache key for an exam's sanitized question paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamAnswerKeyKey returns the cache key for an exam's answer-key hash.
func (r *CacheKeyStruct) ExamAnswerKeyKey(examID string) string {
	return fmt.Sprintf("exam:%s:answer_key", examID)
}

// ExamPointsKey returns the cache key for an exam's per-question points hash.
func (r *CacheKeyStruct) ExamPointsKey(examID string) string {
	return fmt.Sprintf("exam:%s:points", examID)
}

var CacheKey = NewCacheKeyStruct()
