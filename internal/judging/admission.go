package judging

import "codearena/internal/models"

// Admission deny reasons. Distinct codes let clients tell "wait for the
// pending run" apart from "out of attempts".
const (
	DenyReasonPending        = "pending"
	DenyReasonQuotaExhausted = "quota_exhausted"
)

type AdmissionDecision struct {
	Allowed        bool   `json:"allowed"`
	Reason         string `json:"reason,omitempty"`
	CompletedCount int    `json:"submissions_made"`
	MaxSubmissions int    `json:"max_submissions"`
	LastStatus     string `json:"last_status,omitempty"`
}

// Decide applies the admission decision table. Only completed
// submissions count toward the quota; a pending most-recent submission
// blocks with its own reason so in-flight runs cannot starve the quota
// check into letting extra attempts through.
func Decide(completedCount, maxSubmissions int, lastStatus string) AdmissionDecision {
	decision := AdmissionDecision{
		CompletedCount: completedCount,
		MaxSubmissions: maxSubmissions,
		LastStatus:     lastStatus,
	}

	if completedCount < maxSubmissions {
		decision.Allowed = true
		return decision
	}

	if models.IsPending(lastStatus) {
		decision.Reason = DenyReasonPending
		return decision
	}

	decision.Reason = DenyReasonQuotaExhausted
	return decision
}
