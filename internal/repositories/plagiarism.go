package repositories

import (
	"codearena/internal/models"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type PlagiarismRepository interface {
	PairExists(ctx context.Context, submissionID1, submissionID2 int) (bool, error)
	CreateCheck(ctx context.Context, check *models.PlagiarismCheck) error
	ListChecks(ctx context.Context, contestID int) ([]models.PlagiarismCheck, error)
	MarkReviewed(ctx context.Context, checkID int) error
}

type plagiarismRepository struct {
	db *sqlx.DB
}

func NewPlagiarismRepository(db *sqlx.DB) PlagiarismRepository {
	return &plagiarismRepository{db: db}
}

// PairExists treats the pair as unordered: both column orders are
// checked so re-runs never duplicate a recorded pair.
func (r *plagiarismRepository) PairExists(ctx context.Context, submissionID1, submissionID2 int) (bool, error) {
	query := `SELECT COUNT(*) FROM plagiarism_checks
              WHERE (submission_id_1 = ? AND submission_id_2 = ?)
                 OR (submission_id_1 = ? AND submission_id_2 = ?)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, submissionID1, submissionID2, submissionID2, submissionID1); err != nil {
		return false, fmt.Errorf("failed to check pair existence: %w", err)
	}

	return count > 0, nil
}

func (r *plagiarismRepository) CreateCheck(ctx context.Context, check *models.PlagiarismCheck) error {
	query := `INSERT INTO plagiarism_checks
              (submission_id_1, submission_id_2, similarity_score, algorithm_used, reviewed)
              VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		check.SubmissionID1,
		check.SubmissionID2,
		check.SimilarityScore,
		check.AlgorithmUsed,
		check.Reviewed,
	)
	if err != nil {
		return fmt.Errorf("failed to create plagiarism check: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	check.ID = int(id)
	return nil
}

func (r *plagiarismRepository) ListChecks(ctx context.Context, contestID int) ([]models.PlagiarismCheck, error) {
	query := `SELECT pc.id, pc.submission_id_1, pc.submission_id_2, pc.similarity_score,
                  pc.algorithm_used, pc.reviewed, pc.flagged_at
              FROM plagiarism_checks pc`
	args := []interface{}{}

	if contestID > 0 {
		query += ` JOIN submissions s ON s.id = pc.submission_id_1
              JOIN problems p ON p.id = s.problem_id
              WHERE p.contest_id = ?`
		args = append(args, contestID)
	}
	query += ` ORDER BY pc.similarity_score DESC, pc.flagged_at DESC`

	var checks []models.PlagiarismCheck
	if err := r.db.SelectContext(ctx, &checks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list plagiarism checks: %w", err)
	}

	return checks, nil
}

func (r *plagiarismRepository) MarkReviewed(ctx context.Context, checkID int) error {
	query := `UPDATE plagiarism_checks SET reviewed = true WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, checkID)
	if err != nil {
		return fmt.Errorf("failed to mark plagiarism check reviewed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("plagiarism check not found: %d", checkID)
	}

	return nil
}
