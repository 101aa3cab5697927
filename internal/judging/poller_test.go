package judging

import (
	"codearena/internal/judge0"
	"codearena/internal/models"
	"context"
	"errors"
	"testing"
)

type fakeFetcher struct {
	fetch  func(token string) (*judge0.ExecutionResult, error)
	tokens []string
}

func (f *fakeFetcher) Fetch(_ context.Context, token string) (*judge0.ExecutionResult, error) {
	f.tokens = append(f.tokens, token)
	return f.fetch(token)
}

type fakeTestCaseSource struct {
	testCases []models.TestCase
	err       error
}

func (f *fakeTestCaseSource) GetTestCases(_ context.Context, _ int) ([]models.TestCase, error) {
	return f.testCases, f.err
}

func TestRefreshSkipsSettledSubmissions(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*judge0.ExecutionResult, error) {
		t.Fatal("Fetch called for a settled submission")
		return nil, nil
	}}
	store := newFakeResultStore()
	poller := NewPoller(fetcher, store, &fakeTestCaseSource{})

	sub := &models.Submission{ID: 1, Status: models.StatusAccepted, ExternalToken: "tok"}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(store.results) != 0 {
		t.Error("Refresh persisted a result for a settled submission")
	}
}

func TestRefreshSkipsTokenlessSubmissions(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*judge0.ExecutionResult, error) {
		t.Fatal("Fetch called without a token")
		return nil, nil
	}}
	poller := NewPoller(fetcher, newFakeResultStore(), &fakeTestCaseSource{})

	sub := &models.Submission{ID: 2, Status: models.StatusInQueue}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
}

func TestRefreshPersistsCompletedRun(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(token string) (*judge0.ExecutionResult, error) {
		return encodedResult(judge0.StatusIDAccepted, "8\n"), nil
	}}
	store := newFakeResultStore()
	poller := NewPoller(fetcher, store, &fakeTestCaseSource{})

	sub := &models.Submission{ID: 3, ProblemID: 1, Status: models.StatusProcessing, ExternalToken: "abc-123"}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if fetcher.tokens[0] != "abc-123" {
		t.Errorf("fetched token = %q, want %q", fetcher.tokens[0], "abc-123")
	}
	if sub.Status != models.StatusAccepted {
		t.Errorf("submission status = %q, want ACCEPTED", sub.Status)
	}
	if sub.Stdout != "8\n" {
		t.Errorf("submission stdout = %q, want decoded output", sub.Stdout)
	}
	if got := store.results[3]; got == nil || got.Status != models.StatusAccepted {
		t.Errorf("persisted result = %+v, want ACCEPTED", got)
	}
}

func TestRefreshOverridesProviderWrongAnswerOnTrailingWhitespace(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*judge0.ExecutionResult, error) {
		return encodedResult(judge0.StatusIDWrongAnswer, "8 \n"), nil
	}}
	store := newFakeResultStore()
	source := &fakeTestCaseSource{testCases: []models.TestCase{
		{ID: 11, ProblemID: 1, ExpectedOutput: "8"},
	}}
	poller := NewPoller(fetcher, store, source)

	sub := &models.Submission{ID: 4, ProblemID: 1, Status: models.StatusProcessing, ExternalToken: "tok"}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if sub.Status != models.StatusAccepted {
		t.Errorf("submission status = %q, want ACCEPTED after tolerant comparison", sub.Status)
	}
}

func TestRefreshKeepsWrongAnswerOnRealMismatch(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*judge0.ExecutionResult, error) {
		return encodedResult(judge0.StatusIDWrongAnswer, "80\n"), nil
	}}
	source := &fakeTestCaseSource{testCases: []models.TestCase{
		{ID: 11, ProblemID: 1, ExpectedOutput: "8"},
	}}
	poller := NewPoller(fetcher, newFakeResultStore(), source)

	sub := &models.Submission{ID: 5, ProblemID: 1, Status: models.StatusProcessing, ExternalToken: "tok"}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if sub.Status != models.StatusWrongAnswer {
		t.Errorf("submission status = %q, want WRONG_ANSWER", sub.Status)
	}
}

func TestRefreshMarksInternalErrorOnFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*judge0.ExecutionResult, error) {
		return nil, errors.New("connection refused")
	}}
	store := newFakeResultStore()
	poller := NewPoller(fetcher, store, &fakeTestCaseSource{})

	sub := &models.Submission{ID: 6, ProblemID: 1, Status: models.StatusInQueue, ExternalToken: "tok"}
	if err := poller.Refresh(context.Background(), sub); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if sub.Status != models.StatusInternalError {
		t.Errorf("submission status = %q, want INTERNAL_ERROR", sub.Status)
	}
	if got := store.results[6]; got == nil || got.Status != models.StatusInternalError {
		t.Errorf("persisted result = %+v, want INTERNAL_ERROR", got)
	}
}
