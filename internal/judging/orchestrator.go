package judging

import (
	"codearena/internal/judge0"
	"codearena/internal/logger"
	"codearena/internal/models"
	"context"
	"errors"

	"go.uber.org/zap"
)

// Executor is the blocking-wait execution surface of the external judge
// service.
type Executor interface {
	Execute(ctx context.Context, req judge0.ExecutionRequest) (*judge0.ExecutionResult, error)
}

// ResultStore persists the final state of a judging pass.
type ResultStore interface {
	UpdateResult(ctx context.Context, submissionID int, result *models.SubmissionResult) error
}

// TestCaseResult is the per-case diagnostic returned alongside the
// aggregate verdict. Expected outputs are never included; callers only
// see pass/fail.
type TestCaseResult struct {
	TestCaseID     int           `json:"test_case_id"`
	TestCaseName   string        `json:"test_case_name"`
	Passed         bool          `json:"passed"`
	Output         string        `json:"output"`
	Stderr         string        `json:"stderr,omitempty"`
	Time           *float64      `json:"time,omitempty"`
	Memory         *int          `json:"memory,omitempty"`
	ProviderStatus judge0.Status `json:"provider_status"`
	Error          string        `json:"error,omitempty"`
}

type Verdict struct {
	SubmissionID int              `json:"submission_id"`
	Status       string           `json:"status"`
	AllPassed    bool             `json:"all_passed"`
	Results      []TestCaseResult `json:"results"`
}

// Orchestrator drives one submission through all test cases and
// aggregates the per-case outcomes into a final persisted verdict.
type Orchestrator struct {
	executor    Executor
	submissions ResultStore
}

func NewOrchestrator(executor Executor, submissions ResultStore) *Orchestrator {
	return &Orchestrator{
		executor:    executor,
		submissions: submissions,
	}
}

// Judge evaluates the submission against every test case in order. The
// aggregate verdict is binary (ACCEPTED iff all cases pass), except
// that a non-quota execution failure on any case downgrades the verdict
// to INTERNAL_ERROR without aborting the remaining cases. A quota error
// aborts the pass and is surfaced to the caller instead of a verdict.
func (o *Orchestrator) Judge(ctx context.Context, sub *models.Submission, problem *models.Problem, testCases []models.TestCase) (*Verdict, error) {
	results := make([]TestCaseResult, 0, len(testCases))
	allPassed := true
	sawError := false

	var firstFailure *judge0.ExecutionResult
	var worstTime *float64
	var worstMemory *int

	for _, tc := range testCases {
		res, err := o.executor.Execute(ctx, judge0.ExecutionRequest{
			SourceCode:    sub.SourceCode,
			LanguageID:    sub.LanguageID,
			Stdin:         tc.InputData,
			CPUTimeLimit:  problem.CPUTimeLimitSeconds(),
			MemoryLimit:   problem.MemoryLimitBytes,
			EnableNetwork: problem.EnableNetwork,
		})

		if err != nil {
			if errors.Is(err, judge0.ErrQuotaExceeded) {
				// Resource exhaustion applies to the whole pass. The
				// submission must not stay transient, and INTERNAL_ERROR
				// keeps it out of the quota count.
				if storeErr := o.persist(ctx, sub.ID, models.StatusInternalError, nil, worstTime, worstMemory); storeErr != nil {
					logger.Log.Error("Failed to persist submission state after quota error",
						zap.Int("submission_id", sub.ID),
						zap.Error(storeErr))
				}
				return nil, err
			}

			logger.Log.Error("Test case execution failed",
				zap.Int("submission_id", sub.ID),
				zap.Int("test_case_id", tc.ID),
				zap.Error(err))

			sawError = true
			allPassed = false
			results = append(results, TestCaseResult{
				TestCaseID:   tc.ID,
				TestCaseName: tc.Name,
				Error:        err.Error(),
			})
			continue
		}

		stdout := DecodeOutput(deref(res.Stdout))
		stderr := DecodeOutput(deref(res.Stderr))
		passed := OutputsMatch(stdout, tc.ExpectedOutput)

		result := TestCaseResult{
			TestCaseID:     tc.ID,
			TestCaseName:   tc.Name,
			Passed:         passed,
			Output:         stdout,
			Stderr:         stderr,
			Time:           res.TimeSeconds(),
			Memory:         res.Memory,
			ProviderStatus: res.Status,
		}
		results = append(results, result)

		if sec := res.TimeSeconds(); sec != nil && (worstTime == nil || *sec > *worstTime) {
			worstTime = sec
		}
		if res.Memory != nil && (worstMemory == nil || *res.Memory > *worstMemory) {
			worstMemory = res.Memory
		}

		if !passed {
			allPassed = false
			if firstFailure == nil {
				firstFailure = res
			}
		}
	}

	status := models.StatusWrongAnswer
	switch {
	case sawError:
		status = models.StatusInternalError
	case allPassed:
		status = models.StatusAccepted
	}

	if err := o.persist(ctx, sub.ID, status, firstFailure, worstTime, worstMemory); err != nil {
		return nil, err
	}

	sub.Status = status
	return &Verdict{
		SubmissionID: sub.ID,
		Status:       status,
		AllPassed:    allPassed && !sawError,
		Results:      results,
	}, nil
}

func (o *Orchestrator) persist(ctx context.Context, submissionID int, status string, failure *judge0.ExecutionResult, worstTime *float64, worstMemory *int) error {
	result := &models.SubmissionResult{
		Status: status,
		Time:   worstTime,
		Memory: worstMemory,
	}
	if failure != nil {
		result.Stdout = DecodeOutput(deref(failure.Stdout))
		result.Stderr = DecodeOutput(deref(failure.Stderr))
		result.CompileOutput = DecodeOutput(deref(failure.CompileOutput))
	}
	return o.submissions.UpdateResult(ctx, submissionID, result)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
