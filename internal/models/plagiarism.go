package models

import "time"

// PlagiarismCheck records the similarity score for one unordered pair of
// submissions. Pairs are stored with the smaller submission ID first so
// the (submission_id_1, submission_id_2) unique key covers both orders.
type PlagiarismCheck struct {
	ID            int     `db:"id" json:"id"`
	SubmissionID1 int     `db:"submission_id_1" json:"submission_id_1"`
	SubmissionID2 int     `db:"submission_id_2" json:"submission_id_2"`
	// Similarity as a percentage in [0,100].
	SimilarityScore float64   `db:"similarity_score" json:"similarity_score"`
	AlgorithmUsed   string    `db:"algorithm_used" json:"algorithm_used"`
	Reviewed        bool      `db:"reviewed" json:"reviewed"`
	FlaggedAt       time.Time `db:"flagged_at" json:"flagged_at"`
}

type PlagiarismRunRequest struct {
	ContestID int `json:"contest_id"`
	ProblemID int `json:"problem_id"`
}
