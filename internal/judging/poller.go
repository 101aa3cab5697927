package judging

import (
	"codearena/internal/judge0"
	"codearena/internal/logger"
	"codearena/internal/models"
	"context"

	"go.uber.org/zap"
)

// Fetcher is the token-lookup surface of the external judge service.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (*judge0.ExecutionResult, error)
}

// TestCaseSource provides the ordered test cases of a problem.
type TestCaseSource interface {
	GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
}

// Poller reconciles a submission's stored state against the execution
// service while the submission is waiting on an asynchronous run.
type Poller struct {
	fetcher     Fetcher
	submissions ResultStore
	testCases   TestCaseSource
}

func NewPoller(fetcher Fetcher, submissions ResultStore, testCases TestCaseSource) *Poller {
	return &Poller{
		fetcher:     fetcher,
		submissions: submissions,
		testCases:   testCases,
	}
}

// Refresh updates the submission in place from the provider's current
// state. It only acts on pending submissions that carry a provider
// token. Any fetch or persistence failure marks the submission
// INTERNAL_ERROR rather than leaving it transient indefinitely.
func (p *Poller) Refresh(ctx context.Context, sub *models.Submission) error {
	if !models.IsPending(sub.Status) || sub.ExternalToken == "" {
		return nil
	}

	state, err := p.fetcher.Fetch(ctx, sub.ExternalToken)
	if err != nil {
		logger.Log.Error("Failed to fetch submission state from execution service",
			zap.Int("submission_id", sub.ID),
			zap.String("token", sub.ExternalToken),
			zap.Error(err))
		return p.persist(ctx, sub, &models.SubmissionResult{Status: models.StatusInternalError})
	}

	result := &models.SubmissionResult{
		Status:        judge0.MapStatus(state.Status.ID),
		Stdout:        DecodeOutput(deref(state.Stdout)),
		Stderr:        DecodeOutput(deref(state.Stderr)),
		CompileOutput: DecodeOutput(deref(state.CompileOutput)),
		Time:          state.TimeSeconds(),
		Memory:        state.Memory,
	}

	// The provider compares outputs byte-for-byte. Re-apply the tolerant
	// comparison so a trailing-whitespace mismatch does not stand as a
	// wrong answer.
	if result.Status == models.StatusWrongAnswer {
		if expected, ok := p.firstExpectedOutput(ctx, sub.ProblemID); ok && OutputsMatch(result.Stdout, expected) {
			result.Status = models.StatusAccepted
		}
	}

	return p.persist(ctx, sub, result)
}

func (p *Poller) firstExpectedOutput(ctx context.Context, problemID int) (string, bool) {
	testCases, err := p.testCases.GetTestCases(ctx, problemID)
	if err != nil || len(testCases) == 0 {
		if err != nil {
			logger.Log.Error("Failed to load test cases for tolerant comparison",
				zap.Int("problem_id", problemID),
				zap.Error(err))
		}
		return "", false
	}
	return testCases[0].ExpectedOutput, true
}

func (p *Poller) persist(ctx context.Context, sub *models.Submission, result *models.SubmissionResult) error {
	if err := p.submissions.UpdateResult(ctx, sub.ID, result); err != nil {
		return err
	}
	sub.Status = result.Status
	sub.Stdout = result.Stdout
	sub.Stderr = result.Stderr
	sub.CompileOutput = result.CompileOutput
	sub.Time = result.Time
	sub.Memory = result.Memory
	return nil
}
