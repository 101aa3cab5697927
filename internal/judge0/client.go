package judge0

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Hard ceilings the execution service enforces on its free tier. Problem
// configuration may exceed these; requests never do.
const (
	MaxCPUTimeSeconds = 20.0
	MaxMemoryLimit    = 512000
)

// ErrQuotaExceeded is returned when the execution service answers 429.
// It is fatal to the current judging pass and never retried in-request.
var ErrQuotaExceeded = errors.New("execution service quota exceeded")

// ServiceError is any other unexpected provider response.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("execution service error: %d - %s", e.StatusCode, e.Body)
}

// ExecutionRequest describes one run. Limits are the caller's nominal
// values; the client clamps them before dispatch.
type ExecutionRequest struct {
	SourceCode     string
	LanguageID     int
	Stdin          string
	ExpectedOutput string
	CPUTimeLimit   float64
	MemoryLimit    int
	EnableNetwork  bool
}

type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ExecutionResult is the provider's view of one run. Output fields are
// base64-encoded as returned by the wire; decoding belongs to the
// judging layer.
type ExecutionResult struct {
	Token         string  `json:"token,omitempty"`
	Status        Status  `json:"status"`
	Stdout        *string `json:"stdout,omitempty"`
	Stderr        *string `json:"stderr,omitempty"`
	CompileOutput *string `json:"compile_output,omitempty"`
	Message       *string `json:"message,omitempty"`
	Time          *string `json:"time,omitempty"`
	Memory        *int    `json:"memory,omitempty"`
}

// TimeSeconds parses the provider's stringly-typed execution time.
func (r *ExecutionResult) TimeSeconds() *float64 {
	if r.Time == nil {
		return nil
	}
	sec, err := strconv.ParseFloat(*r.Time, 64)
	if err != nil {
		return nil
	}
	return &sec
}

type wireRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output,omitempty"`
	CPUTimeLimit   float64 `json:"cpu_time_limit"`
	MemoryLimit    int     `json:"memory_limit"`
	EnableNetwork  bool    `json:"enable_network"`
}

type Client struct {
	baseURL   string
	apiHost   string
	apiKey    string
	http      *http.Client
	languages LanguageTable
}

func NewClient(baseURL, apiHost, apiKey string, timeout time.Duration, languages LanguageTable) *Client {
	return &Client{
		baseURL:   baseURL,
		apiHost:   apiHost,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: timeout},
		languages: languages,
	}
}

// ResolveLanguage maps free-text language input to a canonical id.
func (c *Client) ResolveLanguage(input string) int {
	return c.languages.Resolve(input)
}

// Execute runs a submission in blocking-wait mode and returns the
// finished result.
func (c *Client) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	return c.post(ctx, req, true)
}

// Submit queues a run without waiting and returns the provider token to
// poll with.
func (c *Client) Submit(ctx context.Context, req ExecutionRequest) (string, error) {
	result, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", &ServiceError{StatusCode: http.StatusOK, Body: "missing token in response"}
	}
	return result.Token, nil
}

// Fetch retrieves the current state of a queued run by token.
func (c *Client) Fetch(ctx context.Context, token string) (*ExecutionResult, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=true", c.baseURL, token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	return c.do(httpReq)
}

func (c *Client) post(ctx context.Context, req ExecutionRequest, wait bool) (*ExecutionResult, error) {
	payload := wireRequest{
		SourceCode:    b64(req.SourceCode),
		LanguageID:    req.LanguageID,
		Stdin:         b64(req.Stdin),
		CPUTimeLimit:  min(req.CPUTimeLimit, MaxCPUTimeSeconds),
		MemoryLimit:   min(req.MemoryLimit, MaxMemoryLimit),
		EnableNetwork: req.EnableNetwork,
	}
	if req.ExpectedOutput != "" {
		payload.ExpectedOutput = b64(req.ExpectedOutput)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/submissions?base64_encoded=true&wait=%t", c.baseURL, wait)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*ExecutionResult, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execution service request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution service response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var result ExecutionResult
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse execution service response: %w", err)
		}
		return &result, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrQuotaExceeded
	default:
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
