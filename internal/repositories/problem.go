package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/services"

	"github.com/jmoiron/sqlx"
)

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.ProblemListItem, error)
	GetProblemByID(ctx context.Context, problemID int) (*models.ProblemDetail, error)
	GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
	GetSampleTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
}

type problemRepository struct {
	db    *sqlx.DB
	cache *services.TestCaseCache
}

func NewProblemRepository(db *sqlx.DB, cache *services.TestCaseCache) ProblemRepository {
	return &problemRepository{db: db, cache: cache}
}

func (r *problemRepository) GetProblems(ctx context.Context) ([]models.ProblemListItem, error) {
	query := `SELECT id, title, difficulty, tags FROM problems`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}

	for i := range problems {
		problems[i].TagList = models.SplitTags(problems[i].Tags)
	}

	return problems, nil
}

func (r *problemRepository) GetProblemByID(ctx context.Context, problemID int) (*models.ProblemDetail, error) {
	query := `SELECT id, title, description, difficulty, tags, problem_type,
                  time_limit_ms, memory_limit_bytes
              FROM problems WHERE id = ?`

	var problem models.ProblemDetail
	if err := r.db.GetContext(ctx, &problem, query, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("problem not found: %d", problemID)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	problem.TagList = models.SplitTags(problem.Tags)

	statsQuery := `
        SELECT
            COUNT(*) as total_submissions,
            COUNT(CASE WHEN status = 'accepted' THEN 1 END) as accepted_submissions
        FROM submissions
        WHERE problem_id = ?`

	var stats struct {
		TotalSubmissions    int `db:"total_submissions"`
		AcceptedSubmissions int `db:"accepted_submissions"`
	}
	if err := r.db.GetContext(ctx, &stats, statsQuery, problemID); err != nil {
		return nil, fmt.Errorf("failed to get submission stats: %w", err)
	}

	problem.TotalSubmissions = stats.TotalSubmissions
	problem.AcceptedSubmissions = stats.AcceptedSubmissions
	if stats.TotalSubmissions > 0 {
		problem.AcceptanceRate = (float64(stats.AcceptedSubmissions) / float64(stats.TotalSubmissions)) * 100
	}

	return &problem, nil
}

// GetTestCases returns every test case for a problem, samples and hidden
// ones alike, in insertion order. Judging always uses the full set.
func (r *problemRepository) GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	if cached, ok := r.cache.Get(ctx, problemID); ok {
		return cached, nil
	}
	logger.Log.Debug("Test cases not in cache, retrieving from DB")

	query := `SELECT id, problem_id, input, expected_output, is_sample
              FROM test_cases WHERE problem_id = ? ORDER BY id`

	var testCases []models.TestCase
	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	_ = r.cache.Put(ctx, problemID, testCases)

	return testCases, nil
}

// GetSampleTestCases returns only the cases marked visible to users. Hidden
// inputs and outputs never leave the judging path.
func (r *problemRepository) GetSampleTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	query := `SELECT id, problem_id, input, expected_output, is_sample
              FROM test_cases WHERE problem_id = ? AND is_sample = 1 ORDER BY id`

	var testCases []models.TestCase
	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		return nil, fmt.Errorf("failed to get sample test cases: %w", err)
	}

	return testCases, nil
}
