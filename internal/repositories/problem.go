package repositories

import (
	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/services"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.ProblemListItem, error)
	GetProblem(ctx context.Context, problemID int) (*models.Problem, error)
	GetProblemDetail(ctx context.Context, problemID int) (*models.ProblemDetail, error)
	GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
}

type problemRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewProblemRepository(db *sqlx.DB, cache services.Cache) ProblemRepository {
	return &problemRepository{db: db, cache: cache}
}

func (r *problemRepository) GetProblems(ctx context.Context) ([]models.ProblemListItem, error) {
	query := `SELECT id, title, difficulty, points FROM problems`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}

	return problems, nil
}

func (r *problemRepository) GetProblem(ctx context.Context, problemID int) (*models.Problem, error) {
	query := `SELECT id, contest_id, title, statement, difficulty, points,
                  time_limit_ms, memory_limit_bytes, cpu_time_limit_ms, enable_network,
                  max_submissions, allow_multiple_languages, default_language_id
              FROM problems WHERE id = ?`

	var problem models.Problem
	if err := r.db.GetContext(ctx, &problem, query, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("problem not found: %d", problemID)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	return &problem, nil
}

func (r *problemRepository) GetProblemDetail(ctx context.Context, problemID int) (*models.ProblemDetail, error) {
	problem, err := r.GetProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	detail := &models.ProblemDetail{Problem: *problem}

	testCases, err := r.GetTestCases(ctx, problemID)
	if err != nil {
		return nil, err
	}
	detail.SampleTestCases = make([]models.TestCase, 0)
	for _, tc := range testCases {
		if tc.IsSample || tc.IsPublic {
			// Expected outputs stay hidden even on sample cases shown
			// for context alongside the statement.
			tc.ExpectedOutput = ""
			detail.SampleTestCases = append(detail.SampleTestCases, tc)
		}
	}

	statsQuery := `
        SELECT
            COUNT(*) as total_submissions,
            COUNT(CASE WHEN status = 'ACCEPTED' THEN 1 END) as accepted_submissions
        FROM submissions
        WHERE problem_id = ?`

	var stats struct {
		TotalSubmissions    int `db:"total_submissions"`
		AcceptedSubmissions int `db:"accepted_submissions"`
	}
	if err := r.db.GetContext(ctx, &stats, statsQuery, problemID); err != nil {
		return nil, fmt.Errorf("failed to get submission stats: %w", err)
	}

	detail.TotalSubmissions = stats.TotalSubmissions
	detail.AcceptedSubmissions = stats.AcceptedSubmissions
	if stats.TotalSubmissions > 0 {
		detail.AcceptanceRate = (float64(stats.AcceptedSubmissions) / float64(stats.TotalSubmissions)) * 100
	}

	return detail, nil
}

// GetTestCases returns the problem's test cases in display/execution
// order, (sort_order, id) ascending.
func (r *problemRepository) GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	cacheKey := fmt.Sprintf("problem:%d:testcases", problemID)
	var testCases []models.TestCase
	if err := r.cache.Get(ctx, cacheKey, &testCases); err == nil {
		logger.Log.Info("Cache hit, returning testcases")
		return testCases, nil // Cache hit
	}
	logger.Log.Info("Test cases not in cache, retrieving in DB")

	query := `SELECT id, problem_id, name, input_data, expected_output, is_sample, is_public, sort_order
              FROM test_cases WHERE problem_id = ?
              ORDER BY sort_order ASC, id ASC`

	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, testCases, 1*time.Hour)

	return testCases, nil
}
