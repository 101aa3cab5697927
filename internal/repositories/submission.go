package repositories

import (
	"codearena/internal/judging"
	"codearena/internal/models"
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type SubmissionRepository interface {
	GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error)
	AdmitAndCreate(ctx context.Context, submission *models.Submission, maxSubmissions int) (*judging.AdmissionDecision, error)
	PreviewAdmission(ctx context.Context, userID, problemID, maxSubmissions int) (*judging.AdmissionDecision, error)
	UpdateResult(ctx context.Context, submissionID int, result *models.SubmissionResult) error
	SetExternalToken(ctx context.Context, submissionID int, token string) error
	GetSubmissionsByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error)
	ListAcceptedSubmissions(ctx context.Context, contestID, problemID int) ([]models.Submission, error)
}

type submissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `id, user_id, problem_id, language_id, source_code, stdin,
              status, stdout, stderr, compile_output, time, memory, external_token,
              ip_address, user_agent, session_id, time_spent_coding, keystrokes_count,
              copy_paste_events, tab_switches, submitted_at, updated_at`

func (r *submissionRepository) GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`

	var submission models.Submission

	err := r.db.GetContext(ctx, &submission, query, submissionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("submission not found: %d", submissionID)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

// AdmitAndCreate runs the admission check and, if allowed, inserts the
// submission inside a single transaction. The user row is locked first
// so two near-simultaneous requests cannot both pass the quota check
// before either is recorded.
func (r *submissionRepository) AdmitAndCreate(ctx context.Context, submission *models.Submission, maxSubmissions int) (*judging.AdmissionDecision, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM users WHERE id = ? FOR UPDATE`, submission.UserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %d", submission.UserID)
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	decision, err := r.decide(ctx, tx, submission.UserID, submission.ProblemID, maxSubmissions)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return decision, nil
	}

	insertQuery := `INSERT INTO submissions
              (user_id, problem_id, language_id, source_code, stdin, status,
               ip_address, user_agent, session_id, time_spent_coding, keystrokes_count,
               copy_paste_events, tab_switches)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, insertQuery,
		submission.UserID,
		submission.ProblemID,
		submission.LanguageID,
		submission.SourceCode,
		submission.Stdin,
		submission.Status,
		submission.IPAddress,
		submission.UserAgent,
		submission.SessionID,
		submission.TimeSpentCoding,
		submission.KeystrokesCount,
		submission.CopyPasteEvents,
		submission.TabSwitches,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	submission.ID = int(id)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	return decision, nil
}

// PreviewAdmission evaluates the decision table without inserting
// anything. It takes no locks; the result is advisory.
func (r *submissionRepository) PreviewAdmission(ctx context.Context, userID, problemID, maxSubmissions int) (*judging.AdmissionDecision, error) {
	return r.decide(ctx, r.db, userID, problemID, maxSubmissions)
}

func (r *submissionRepository) decide(ctx context.Context, q sqlx.QueryerContext, userID, problemID, maxSubmissions int) (*judging.AdmissionDecision, error) {
	query := `SELECT status FROM submissions
              WHERE user_id = ? AND problem_id = ?
              ORDER BY submitted_at DESC, id DESC`

	var statuses []string
	if err := sqlx.SelectContext(ctx, q, &statuses, query, userID, problemID); err != nil {
		return nil, fmt.Errorf("failed to get submission statuses: %w", err)
	}

	completed := 0
	for _, status := range statuses {
		if models.IsCompleted(status) {
			completed++
		}
	}

	lastStatus := ""
	if len(statuses) > 0 {
		lastStatus = statuses[0]
	}

	decision := judging.Decide(completed, maxSubmissions, lastStatus)
	return &decision, nil
}

func (r *submissionRepository) UpdateResult(ctx context.Context, submissionID int, result *models.SubmissionResult) error {
	query := `UPDATE submissions
              SET status = ?, stdout = ?, stderr = ?, compile_output = ?, time = ?, memory = ?
              WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		result.Status,
		result.Stdout,
		result.Stderr,
		result.CompileOutput,
		result.Time,
		result.Memory,
		submissionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission result: %w", err)
	}

	return nil
}

func (r *submissionRepository) SetExternalToken(ctx context.Context, submissionID int, token string) error {
	query := `UPDATE submissions SET external_token = ?, status = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, token, models.StatusInQueue, submissionID)
	if err != nil {
		return fmt.Errorf("failed to set external token: %w", err)
	}

	return nil
}

func (r *submissionRepository) GetSubmissionsByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error) {
	query := `SELECT id, language_id, status, submitted_at
              FROM submissions
              WHERE user_id = ? AND problem_id = ?
              ORDER BY submitted_at DESC`

	var submissions []models.SubmissionListItem
	if err := r.db.SelectContext(ctx, &submissions, query, userID, problemID); err != nil {
		return nil, fmt.Errorf("failed to get user submissions: %w", err)
	}

	return submissions, nil
}

// ListAcceptedSubmissions returns accepted submissions, optionally
// scoped to one contest or one problem (zero means unscoped).
func (r *submissionRepository) ListAcceptedSubmissions(ctx context.Context, contestID, problemID int) ([]models.Submission, error) {
	query := `SELECT s.id, s.user_id, s.problem_id, s.language_id, s.source_code, s.status, s.submitted_at
              FROM submissions s`
	args := []interface{}{}

	switch {
	case problemID > 0:
		query += ` WHERE s.status = 'ACCEPTED' AND s.problem_id = ?`
		args = append(args, problemID)
	case contestID > 0:
		query += ` JOIN problems p ON p.id = s.problem_id
              WHERE s.status = 'ACCEPTED' AND p.contest_id = ?`
		args = append(args, contestID)
	default:
		query += ` WHERE s.status = 'ACCEPTED'`
	}
	query += ` ORDER BY s.id ASC`

	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accepted submissions: %w", err)
	}

	return submissions, nil
}
