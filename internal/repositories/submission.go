package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"codearena/internal/models"

	"github.com/jmoiron/sqlx"
)

type SubmissionRepository interface {
	// Save inserts a finished submission in one shot (synchronous judge path).
	Save(ctx context.Context, submission *models.Submission) error
	// CreatePending inserts a submission awaiting judging (queued path).
	CreatePending(ctx context.Context, submission *models.Submission) error
	MarkRunning(ctx context.Context, submissionID int) error
	// SaveVerdict writes the judging outcome exactly once for a pending
	// submission. There is no other update path.
	SaveVerdict(ctx context.Context, submissionID int, status string, totalTimeMs, maxTimeMs, memoryUsedBytes int64) error
	GetByID(ctx context.Context, submissionID int) (*models.Submission, error)
	ListByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error)
}

type submissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	query := `INSERT INTO submissions
                  (user_id, problem_id, language, source_code, status,
                   total_time_ms, max_time_ms, memory_used_bytes)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		submission.UserID,
		submission.ProblemID,
		submission.Language,
		submission.SourceCode,
		submission.Status,
		submission.TotalTimeMs,
		submission.MaxTimeMs,
		submission.MemoryUsedBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	submission.ID = int(id)
	return nil
}

func (r *submissionRepository) CreatePending(ctx context.Context, submission *models.Submission) error {
	submission.Status = models.StatusPending

	query := `INSERT INTO submissions
                  (user_id, problem_id, language, source_code, status,
                   total_time_ms, max_time_ms, memory_used_bytes)
              VALUES (?, ?, ?, ?, ?, 0, 0, 0)`

	result, err := r.db.ExecContext(ctx, query,
		submission.UserID,
		submission.ProblemID,
		submission.Language,
		submission.SourceCode,
		submission.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	submission.ID = int(id)
	return nil
}

func (r *submissionRepository) MarkRunning(ctx context.Context, submissionID int) error {
	query := `UPDATE submissions SET status = ? WHERE id = ? AND status = ?`

	if _, err := r.db.ExecContext(ctx, query, models.StatusRunning, submissionID, models.StatusPending); err != nil {
		return fmt.Errorf("failed to mark submission running: %w", err)
	}

	return nil
}

func (r *submissionRepository) SaveVerdict(ctx context.Context, submissionID int, status string, totalTimeMs, maxTimeMs, memoryUsedBytes int64) error {
	query := `UPDATE submissions
              SET status = ?, total_time_ms = ?, max_time_ms = ?, memory_used_bytes = ?
              WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, status, totalTimeMs, maxTimeMs, memoryUsedBytes, submissionID); err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}

	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, submissionID int) (*models.Submission, error) {
	query := `SELECT id, user_id, problem_id, language, source_code, status,
                  total_time_ms, max_time_ms, memory_used_bytes, submitted_at
              FROM submissions WHERE id = ?`

	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, submissionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("submission not found: %d", submissionID)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

func (r *submissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error) {
	query := `SELECT id, language, status, total_time_ms, max_time_ms, submitted_at
              FROM submissions
              WHERE user_id = ? AND problem_id = ?
              ORDER BY submitted_at DESC`

	var submissions []models.SubmissionListItem
	if err := r.db.SelectContext(ctx, &submissions, query, userID, problemID); err != nil {
		return nil, fmt.Errorf("failed to get user submissions: %w", err)
	}

	return submissions, nil
}
