package models

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusInQueue             = "IN_QUEUE"
	StatusProcessing          = "PROCESSING"
	StatusAccepted            = "ACCEPTED"
	StatusWrongAnswer         = "WRONG_ANSWER"
	StatusTimeLimitExceeded   = "TIME_LIMIT_EXCEEDED"
	StatusMemoryLimitExceeded = "MEMORY_LIMIT_EXCEEDED"
	StatusRuntimeError        = "RUNTIME_ERROR"
	StatusCompilationError    = "COMPILATION_ERROR"
	StatusInternalError       = "INTERNAL_ERROR"
)

// IsPending reports whether a status is transient, i.e. the submission
// is still waiting on the execution service.
func IsPending(status string) bool {
	return status == StatusInQueue || status == StatusProcessing
}

// IsCompleted reports whether a status counts toward the per-problem
// submission quota. Pending and internally-failed submissions do not.
func IsCompleted(status string) bool {
	return !IsPending(status) && status != StatusInternalError
}

type Submission struct {
	ID         int    `db:"id" json:"id"`
	UserID     int    `db:"user_id" json:"user_id"`
	ProblemID  int    `db:"problem_id" json:"problem_id"`
	LanguageID int    `db:"language_id" json:"language_id"`
	SourceCode string `db:"source_code" json:"source_code"`
	Stdin      string `db:"stdin" json:"stdin,omitempty"`

	Status        string   `db:"status" json:"status"`
	Stdout        string   `db:"stdout" json:"stdout,omitempty"`
	Stderr        string   `db:"stderr" json:"stderr,omitempty"`
	CompileOutput string   `db:"compile_output" json:"compile_output,omitempty"`
	Time          *float64 `db:"time" json:"time,omitempty"`
	Memory        *int     `db:"memory" json:"memory,omitempty"`
	ExternalToken string   `db:"external_token" json:"-"`

	// Forensic metadata, write-once at creation.
	IPAddress       string `db:"ip_address" json:"-"`
	UserAgent       string `db:"user_agent" json:"-"`
	SessionID       string `db:"session_id" json:"-"`
	TimeSpentCoding *int   `db:"time_spent_coding" json:"-"`
	KeystrokesCount *int   `db:"keystrokes_count" json:"-"`
	CopyPasteEvents int    `db:"copy_paste_events" json:"-"`
	TabSwitches     int    `db:"tab_switches" json:"-"`

	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SubmissionResult carries the mutable outcome fields written back after
// a judging pass or a poller refresh.
type SubmissionResult struct {
	Status        string
	Stdout        string
	Stderr        string
	CompileOutput string
	Time          *float64
	Memory        *int
}

type SubmissionRequest struct {
	Language        string `json:"language" binding:"required"`
	SourceCode      string `json:"source_code" binding:"required"`
	Stdin           string `json:"stdin"`
	TimeSpentCoding *int   `json:"time_spent_coding"`
	KeystrokesCount *int   `json:"keystrokes_count"`
	CopyPasteEvents int    `json:"copy_paste_events"`
	TabSwitches     int    `json:"tab_switches"`
}

func (r *SubmissionRequest) ValidateRequest() error {
	if strings.TrimSpace(r.Language) == "" {
		return errors.New("language cannot be empty")
	}

	if strings.TrimSpace(r.SourceCode) == "" {
		return errors.New("source code cannot be empty")
	}

	return nil
}

type SubmissionListItem struct {
	ID          int       `db:"id" json:"id"`
	LanguageID  int       `db:"language_id" json:"language_id"`
	Status      string    `db:"status" json:"status"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	// Derived field filled in by the handler
	FormattedTime string `db:"-" json:"submitted_time"`
}
