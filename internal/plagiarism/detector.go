package plagiarism

import (
	"codearena/internal/logger"
	"codearena/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

const algorithmName = "sequence_matcher"

// AcceptedLister returns the accepted submissions in scope, optionally
// narrowed to one contest or one problem (zero means unscoped).
type AcceptedLister interface {
	ListAcceptedSubmissions(ctx context.Context, contestID, problemID int) ([]models.Submission, error)
}

// CheckStore persists pairwise results. PairExists must treat the pair
// as unordered.
type CheckStore interface {
	PairExists(ctx context.Context, submissionID1, submissionID2 int) (bool, error)
	CreateCheck(ctx context.Context, check *models.PlagiarismCheck) error
}

// Detector runs pairwise similarity scoring over accepted submissions.
//
// The batch is O(n²) pairs with an O(len·len) comparison per pair. That
// is acceptable only because runs are admin-triggered and scoped; an
// unbounded corpus needs a cheaper pre-filter (e.g. shingling) before
// the pairwise pass.
type Detector struct {
	submissions AcceptedLister
	checks      CheckStore
}

func NewDetector(submissions AcceptedLister, checks CheckStore) *Detector {
	return &Detector{
		submissions: submissions,
		checks:      checks,
	}
}

// Run scores every unordered pair of accepted submissions in scope,
// skipping pairs already recorded, and returns the number of checks
// created. Skipping makes re-runs idempotent and lets a cancelled run
// resume safely: cancellation is honored between pairs, and no lock is
// held across the pass.
func (d *Detector) Run(ctx context.Context, contestID, problemID int) (int, error) {
	submissions, err := d.submissions.ListAcceptedSubmissions(ctx, contestID, problemID)
	if err != nil {
		return 0, fmt.Errorf("failed to list accepted submissions: %w", err)
	}

	if len(submissions) < 2 {
		return 0, nil
	}

	created := 0
	for i := 0; i < len(submissions); i++ {
		for j := i + 1; j < len(submissions); j++ {
			if err := ctx.Err(); err != nil {
				return created, err
			}

			first, second := orderPair(&submissions[i], &submissions[j])

			exists, err := d.checks.PairExists(ctx, first.ID, second.ID)
			if err != nil {
				return created, fmt.Errorf("failed to look up pair (%d, %d): %w", first.ID, second.ID, err)
			}
			if exists {
				continue
			}

			ratio := Score(first.SourceCode, second.SourceCode)
			check := &models.PlagiarismCheck{
				SubmissionID1:   first.ID,
				SubmissionID2:   second.ID,
				SimilarityScore: ToPercent(ratio),
				AlgorithmUsed:   algorithmName,
			}
			if err := d.checks.CreateCheck(ctx, check); err != nil {
				return created, fmt.Errorf("failed to record pair (%d, %d): %w", first.ID, second.ID, err)
			}
			created++
		}
	}

	logger.Log.Info("Plagiarism detection pass finished",
		zap.Int("submissions", len(submissions)),
		zap.Int("checks_created", created))
	return created, nil
}

// orderPair normalizes an unordered pair to smaller-ID-first so the
// uniqueness invariant holds regardless of iteration order.
func orderPair(a, b *models.Submission) (*models.Submission, *models.Submission) {
	if a.ID > b.ID {
		return b, a
	}
	return a, b
}
