package models

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending           = "pending"
	StatusRunning           = "running"
	StatusAccepted          = "accepted"
	StatusWrongAnswer       = "wrong_answer"
	StatusRuntimeError      = "runtime_error"
	StatusTimeLimitExceeded = "time_limit_exceeded"
	StatusCompilationError  = "compilation_error"
	StatusInternalError     = "internal_error"
)

// Submission is an append-only record: the synchronous judge path inserts the
// finished record in one shot, the queued path inserts it as pending and
// writes the verdict exactly once when judging completes.
type Submission struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	ProblemID       int       `db:"problem_id" json:"problem_id"`
	Language        string    `db:"language" json:"language"`
	SourceCode      string    `db:"source_code" json:"source_code"`
	Status          string    `db:"status" json:"status"`
	TotalTimeMs     int64     `db:"total_time_ms" json:"total_time_ms"`
	MaxTimeMs       int64     `db:"max_time_ms" json:"max_time_ms"`
	MemoryUsedBytes int64     `db:"memory_used_bytes" json:"memory_used_bytes"`
	SubmittedAt     time.Time `db:"submitted_at" json:"submitted_at"`
}

type SubmissionRequest struct {
	UserID     int    `json:"user_id" binding:"required"`
	ProblemID  int    `json:"problem_id" binding:"required"`
	Language   string `json:"language" binding:"required"`
	SourceCode string `json:"source_code" binding:"required"`
}

func (r *SubmissionRequest) ValidateRequest() error {
	if r.UserID <= 0 {
		return errors.New("user ID must be a positive integer")
	}

	if r.ProblemID <= 0 {
		return errors.New("problem ID must be a positive integer")
	}

	if strings.TrimSpace(r.Language) == "" {
		return errors.New("language cannot be empty")
	}

	if strings.TrimSpace(r.SourceCode) == "" {
		return errors.New("source code cannot be empty")
	}

	return nil
}

type SubmissionListItem struct {
	ID          int       `db:"id" json:"id"`
	Language    string    `db:"language" json:"language"`
	Status      string    `db:"status" json:"status"`
	TotalTimeMs int64     `db:"total_time_ms" json:"total_time_ms"`
	MaxTimeMs   int64     `db:"max_time_ms" json:"max_time_ms"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	// Derived field filled in by the handler
	FormattedTime string `db:"-" json:"submitted_time"`
}
