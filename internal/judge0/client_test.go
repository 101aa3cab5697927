package judge0

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-host", "test-key", 5*time.Second, DefaultLanguages(71))
}

func decodeWireRequest(t *testing.T, r *http.Request) wireRequest {
	t.Helper()
	var payload wireRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return payload
}

func TestExecuteEncodesAndClampsPayload(t *testing.T) {
	var got wireRequest
	var gotURL string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = decodeWireRequest(t, r)
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"id":3,"description":"Accepted"}}`))
	})

	_, err := client.Execute(context.Background(), ExecutionRequest{
		SourceCode:     "print('hi')",
		LanguageID:     71,
		Stdin:          "5 3",
		ExpectedOutput: "8",
		CPUTimeLimit:   60.0,
		MemoryLimit:    1024000,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if gotURL != "/submissions?base64_encoded=true&wait=true" {
		t.Errorf("request URL = %q, want wait=true submission path", gotURL)
	}
	if got.SourceCode != base64.StdEncoding.EncodeToString([]byte("print('hi')")) {
		t.Errorf("source code not base64-encoded: %q", got.SourceCode)
	}
	if got.Stdin != base64.StdEncoding.EncodeToString([]byte("5 3")) {
		t.Errorf("stdin not base64-encoded: %q", got.Stdin)
	}
	if got.ExpectedOutput != base64.StdEncoding.EncodeToString([]byte("8")) {
		t.Errorf("expected output not base64-encoded: %q", got.ExpectedOutput)
	}
	if got.CPUTimeLimit != MaxCPUTimeSeconds {
		t.Errorf("cpu time limit = %v, want clamped to %v", got.CPUTimeLimit, MaxCPUTimeSeconds)
	}
	if got.MemoryLimit != MaxMemoryLimit {
		t.Errorf("memory limit = %v, want clamped to %v", got.MemoryLimit, MaxMemoryLimit)
	}
}

func TestExecuteKeepsLimitsUnderCeiling(t *testing.T) {
	var got wireRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = decodeWireRequest(t, r)
		_, _ = w.Write([]byte(`{"status":{"id":3,"description":"Accepted"}}`))
	})

	_, err := client.Execute(context.Background(), ExecutionRequest{
		SourceCode:   "src",
		LanguageID:   54,
		CPUTimeLimit: 2.5,
		MemoryLimit:  128000,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if got.CPUTimeLimit != 2.5 {
		t.Errorf("cpu time limit = %v, want 2.5 untouched", got.CPUTimeLimit)
	}
	if got.MemoryLimit != 128000 {
		t.Errorf("memory limit = %v, want 128000 untouched", got.MemoryLimit)
	}
	if got.ExpectedOutput != "" {
		t.Errorf("expected output = %q, want omitted when empty", got.ExpectedOutput)
	}
}

func TestExecuteSetsRapidAPIHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Host") != "test-host" {
			t.Errorf("X-RapidAPI-Host = %q, want %q", r.Header.Get("X-RapidAPI-Host"), "test-host")
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Errorf("X-RapidAPI-Key = %q, want %q", r.Header.Get("X-RapidAPI-Key"), "test-key")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"status":{"id":3,"description":"Accepted"}}`))
	})

	if _, err := client.Execute(context.Background(), ExecutionRequest{SourceCode: "src", LanguageID: 71}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestExecuteQuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Execute(context.Background(), ExecutionRequest{SourceCode: "src", LanguageID: 71})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Execute error = %v, want ErrQuotaExceeded", err)
	}
}

func TestExecuteServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.Execute(context.Background(), ExecutionRequest{SourceCode: "src", LanguageID: 71})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("Execute error = %v, want *ServiceError", err)
	}
	if serviceErr.StatusCode != http.StatusBadGateway || serviceErr.Body != "upstream down" {
		t.Errorf("ServiceError = %+v, want status 502 with body", serviceErr)
	}
}

func TestSubmitReturnsToken(t *testing.T) {
	var gotURL string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"d85cd024-1548-4165-96c7-7bc88673f194"}`))
	})

	token, err := client.Submit(context.Background(), ExecutionRequest{SourceCode: "src", LanguageID: 71})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if token != "d85cd024-1548-4165-96c7-7bc88673f194" {
		t.Errorf("token = %q, want provider token", token)
	}
	if gotURL != "/submissions?base64_encoded=true&wait=false" {
		t.Errorf("request URL = %q, want wait=false submission path", gotURL)
	}
}

func TestSubmitMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"id":1,"description":"In Queue"}}`))
	})

	_, err := client.Submit(context.Background(), ExecutionRequest{SourceCode: "src", LanguageID: 71})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("Submit error = %v, want *ServiceError for missing token", err)
	}
}

func TestFetchParsesResult(t *testing.T) {
	stdout := base64.StdEncoding.EncodeToString([]byte("8\n"))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		if r.URL.String() != "/submissions/tok-1?base64_encoded=true" {
			t.Errorf("request URL = %q, want token fetch path", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"status":{"id":3,"description":"Accepted"},"stdout":"` + stdout + `","time":"0.024","memory":3012}`))
	})

	result, err := client.Fetch(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if result.Status.ID != StatusIDAccepted {
		t.Errorf("status id = %d, want %d", result.Status.ID, StatusIDAccepted)
	}
	if result.Stdout == nil || *result.Stdout != stdout {
		t.Errorf("stdout = %v, want raw base64 payload", result.Stdout)
	}
	if sec := result.TimeSeconds(); sec == nil || *sec != 0.024 {
		t.Errorf("TimeSeconds() = %v, want 0.024", sec)
	}
	if result.Memory == nil || *result.Memory != 3012 {
		t.Errorf("memory = %v, want 3012", result.Memory)
	}
}

func TestTimeSecondsUnparsable(t *testing.T) {
	bad := "n/a"
	result := &ExecutionResult{Time: &bad}
	if sec := result.TimeSeconds(); sec != nil {
		t.Errorf("TimeSeconds() = %v, want nil for unparsable time", sec)
	}
	result = &ExecutionResult{}
	if sec := result.TimeSeconds(); sec != nil {
		t.Errorf("TimeSeconds() = %v, want nil when time absent", sec)
	}
}
