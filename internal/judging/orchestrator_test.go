package judging

import (
	"codearena/internal/judge0"
	"codearena/internal/logger"
	"codearena/internal/models"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

type fakeExecutor struct {
	execute func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error)
	calls   []judge0.ExecutionRequest
}

func (f *fakeExecutor) Execute(_ context.Context, req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
	f.calls = append(f.calls, req)
	return f.execute(req)
}

type fakeResultStore struct {
	results map[int]*models.SubmissionResult
	err     error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[int]*models.SubmissionResult)}
}

func (f *fakeResultStore) UpdateResult(_ context.Context, submissionID int, result *models.SubmissionResult) error {
	if f.err != nil {
		return f.err
	}
	f.results[submissionID] = result
	return nil
}

func encodedResult(statusID int, stdout string) *judge0.ExecutionResult {
	encoded := base64.StdEncoding.EncodeToString([]byte(stdout))
	timeStr := "0.012"
	memory := 3456
	return &judge0.ExecutionResult{
		Status: judge0.Status{ID: statusID, Description: "status"},
		Stdout: &encoded,
		Time:   &timeStr,
		Memory: &memory,
	}
}

func sumProblem() *models.Problem {
	return &models.Problem{
		ID:               1,
		Title:            "Sum of Two Numbers",
		CPUTimeLimitMS:   2000,
		MemoryLimitBytes: 128000,
		MaxSubmissions:   10,
	}
}

func sumTestCases() []models.TestCase {
	return []models.TestCase{
		{ID: 11, ProblemID: 1, Name: "basic", InputData: "5 3", ExpectedOutput: "8"},
	}
}

func TestJudgeAccepted(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			return encodedResult(judge0.StatusIDAccepted, "8\n"), nil
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 100, ProblemID: 1, LanguageID: 71, SourceCode: "print(sum(map(int, input().split())))"}

	verdict, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), sumTestCases())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}

	if verdict.Status != models.StatusAccepted {
		t.Errorf("verdict status = %q, want %q", verdict.Status, models.StatusAccepted)
	}
	if !verdict.AllPassed {
		t.Error("verdict.AllPassed = false, want true")
	}
	if len(verdict.Results) != 1 || !verdict.Results[0].Passed {
		t.Fatalf("unexpected results: %+v", verdict.Results)
	}
	if got := store.results[100]; got == nil || got.Status != models.StatusAccepted {
		t.Errorf("persisted result = %+v, want ACCEPTED", got)
	}
	if sub.Status != models.StatusAccepted {
		t.Errorf("submission status = %q, want ACCEPTED", sub.Status)
	}
}

func TestJudgeAcceptedWithTrailingWhitespace(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			return encodedResult(judge0.StatusIDWrongAnswer, "8 \n"), nil
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 101, ProblemID: 1, LanguageID: 71, SourceCode: "print('8 ')"}

	verdict, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), sumTestCases())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}

	if verdict.Status != models.StatusAccepted {
		t.Errorf("verdict status = %q, want %q despite provider wrong-answer", verdict.Status, models.StatusAccepted)
	}
}

func TestJudgeWrongAnswer(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			return encodedResult(judge0.StatusIDAccepted, "80\n"), nil
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 102, ProblemID: 1, LanguageID: 71, SourceCode: "print(80)"}

	verdict, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), sumTestCases())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}

	if verdict.Status != models.StatusWrongAnswer {
		t.Errorf("verdict status = %q, want %q", verdict.Status, models.StatusWrongAnswer)
	}
	if verdict.Results[0].Passed {
		t.Error("result marked passed for wrong output")
	}
	if got := store.results[102]; got == nil || got.Stdout != "80\n" {
		t.Errorf("persisted first-failure stdout = %+v, want %q", got, "80\n")
	}
}

func TestJudgeRunsTestCasesInOrder(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			return encodedResult(judge0.StatusIDAccepted, "ok"), nil
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 103, ProblemID: 1, LanguageID: 60, SourceCode: "src"}
	testCases := []models.TestCase{
		{ID: 1, InputData: "first", ExpectedOutput: "ok"},
		{ID: 2, InputData: "second", ExpectedOutput: "ok"},
		{ID: 3, InputData: "third", ExpectedOutput: "ok"},
	}

	if _, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), testCases); err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}

	if len(executor.calls) != 3 {
		t.Fatalf("executor called %d times, want 3", len(executor.calls))
	}
	for i, want := range []string{"first", "second", "third"} {
		if executor.calls[i].Stdin != want {
			t.Errorf("call %d stdin = %q, want %q", i, executor.calls[i].Stdin, want)
		}
	}
	if executor.calls[0].CPUTimeLimit != 2.0 {
		t.Errorf("cpu time limit = %v, want 2.0 seconds", executor.calls[0].CPUTimeLimit)
	}
	if executor.calls[0].MemoryLimit != 128000 {
		t.Errorf("memory limit = %v, want 128000", executor.calls[0].MemoryLimit)
	}
}

func TestJudgeQuotaExceededAbortsPass(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			return nil, judge0.ErrQuotaExceeded
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 104, ProblemID: 1, LanguageID: 71, SourceCode: "src"}
	testCases := []models.TestCase{
		{ID: 1, InputData: "a", ExpectedOutput: "x"},
		{ID: 2, InputData: "b", ExpectedOutput: "y"},
	}

	verdict, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), testCases)
	if !errors.Is(err, judge0.ErrQuotaExceeded) {
		t.Fatalf("Judge error = %v, want ErrQuotaExceeded", err)
	}
	if verdict != nil {
		t.Errorf("verdict = %+v, want nil on quota abort", verdict)
	}
	if len(executor.calls) != 1 {
		t.Errorf("executor called %d times after quota error, want 1", len(executor.calls))
	}
	if got := store.results[104]; got == nil || got.Status != models.StatusInternalError {
		t.Errorf("persisted status = %+v, want INTERNAL_ERROR so the submission is not left transient", got)
	}
}

func TestJudgeExecutionErrorDoesNotAbortSiblings(t *testing.T) {
	executor := &fakeExecutor{
		execute: func(req judge0.ExecutionRequest) (*judge0.ExecutionResult, error) {
			if req.Stdin == "a" {
				return nil, &judge0.ServiceError{StatusCode: 502, Body: "bad gateway"}
			}
			return encodedResult(judge0.StatusIDAccepted, "y"), nil
		},
	}
	store := newFakeResultStore()
	sub := &models.Submission{ID: 105, ProblemID: 1, LanguageID: 71, SourceCode: "src"}
	testCases := []models.TestCase{
		{ID: 1, InputData: "a", ExpectedOutput: "x"},
		{ID: 2, InputData: "b", ExpectedOutput: "y"},
	}

	verdict, err := NewOrchestrator(executor, store).Judge(context.Background(), sub, sumProblem(), testCases)
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}

	if verdict.Status != models.StatusInternalError {
		t.Errorf("verdict status = %q, want %q", verdict.Status, models.StatusInternalError)
	}
	if len(verdict.Results) != 2 {
		t.Fatalf("got %d results, want both test cases recorded", len(verdict.Results))
	}
	if verdict.Results[0].Error == "" {
		t.Error("failed case has no error message")
	}
	if !verdict.Results[1].Passed {
		t.Error("sibling case after failure not judged")
	}
}
