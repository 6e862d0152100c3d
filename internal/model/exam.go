package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft    ExamStatus = "DRAFT"
	ExamStatusOpen     ExamStatus = "OPEN"
	ExamStatusArchived ExamStatus = "ARCHIVED"
)

// Exam represents a scheduled instance of a question bank: a time window,
// a duration, an entry token and a target class.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	QBankID         uuid.UUID  `json:"qbank_id"`
	TargetClass     string     `json:"target_class"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	EntryToken      string     `json:"-"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// WindowOpen reports whether now lies within the exam's scheduled window.
// A nil bound is treated as unbounded on that side.
func (e *Exam) WindowOpen(now time.Time) bool {
	if e.ScheduledStart != nil && now.Before(*e.ScheduledStart) {
		return false
	}
	if e.ScheduledEnd != nil && now.After(*e.ScheduledEnd) {
		return false
	}
	return true
}

// ExamMeta is the sanitized exam header sent to students and monitors.
type ExamMeta struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	TargetClass     string     `json:"target_class"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time `json:"scheduled_end,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          ExamStatus `json:"status"`
}

// Meta strips the entry token and internal fields for external consumption.
func (e *Exam) Meta() ExamMeta {
	return ExamMeta{
		ID:              e.ID,
		Title:           e.Title,
		TargetClass:     e.TargetClass,
		ScheduledStart:  e.ScheduledStart,
		ScheduledEnd:    e.ScheduledEnd,
		DurationMinutes: e.DurationMinutes,
		Status:          e.Status,
	}
}
