package judging

import (
	"codearena/internal/judge0"
	"codearena/internal/logger"
	"codearena/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Submitter is the token-returning execution surface of the external
// judge service.
type Submitter interface {
	Submit(ctx context.Context, req judge0.ExecutionRequest) (string, error)
}

// DispatchStore is the persistence surface the async dispatcher needs.
type DispatchStore interface {
	ResultStore
	GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error)
	SetExternalToken(ctx context.Context, submissionID int, token string) error
}

// ProblemSource loads the problem and ordered test cases for a
// submission.
type ProblemSource interface {
	TestCaseSource
	GetProblem(ctx context.Context, problemID int) (*models.Problem, error)
}

// Dispatcher hands a queued submission to the execution service in
// token-returning mode. The submission stays IN_QUEUE with its token
// recorded; the status poller completes it on a later read.
type Dispatcher struct {
	submitter   Submitter
	submissions DispatchStore
	problems    ProblemSource
}

func NewDispatcher(submitter Submitter, submissions DispatchStore, problems ProblemSource) *Dispatcher {
	return &Dispatcher{
		submitter:   submitter,
		submissions: submissions,
		problems:    problems,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, submissionID int) error {
	sub, err := d.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to load submission %d: %w", submissionID, err)
	}

	if !models.IsPending(sub.Status) || sub.ExternalToken != "" {
		// Already dispatched or finished; dispatch is idempotent.
		return nil
	}

	problem, err := d.problems.GetProblem(ctx, sub.ProblemID)
	if err != nil {
		return d.fail(ctx, sub.ID, fmt.Errorf("failed to load problem %d: %w", sub.ProblemID, err))
	}

	testCases, err := d.problems.GetTestCases(ctx, sub.ProblemID)
	if err != nil {
		return d.fail(ctx, sub.ID, fmt.Errorf("failed to load test cases for problem %d: %w", sub.ProblemID, err))
	}

	req := judge0.ExecutionRequest{
		SourceCode:    sub.SourceCode,
		LanguageID:    sub.LanguageID,
		Stdin:         sub.Stdin,
		CPUTimeLimit:  problem.CPUTimeLimitSeconds(),
		MemoryLimit:   problem.MemoryLimitBytes,
		EnableNetwork: problem.EnableNetwork,
	}
	if len(testCases) > 0 {
		if req.Stdin == "" {
			req.Stdin = testCases[0].InputData
		}
		req.ExpectedOutput = testCases[0].ExpectedOutput
	}

	token, err := d.submitter.Submit(ctx, req)
	if err != nil {
		return d.fail(ctx, sub.ID, fmt.Errorf("failed to dispatch submission %d: %w", sub.ID, err))
	}

	if err := d.submissions.SetExternalToken(ctx, sub.ID, token); err != nil {
		return fmt.Errorf("failed to record token for submission %d: %w", sub.ID, err)
	}

	logger.Log.Info("Dispatched submission to execution service",
		zap.Int("submission_id", sub.ID),
		zap.String("token", token))
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, submissionID int, cause error) error {
	logger.Log.Error("Async dispatch failed",
		zap.Int("submission_id", submissionID),
		zap.Error(cause))

	if err := d.submissions.UpdateResult(ctx, submissionID, &models.SubmissionResult{
		Status: models.StatusInternalError,
	}); err != nil {
		logger.Log.Error("Failed to mark submission as internal error",
			zap.Int("submission_id", submissionID),
			zap.Error(err))
	}
	return cause
}
