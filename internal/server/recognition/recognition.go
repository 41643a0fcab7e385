// Package recognition turns scores from an external recognition service into
// verdicts.
package recognition

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// MaxScore is the upper bound of both scores.
const MaxScore = 100

// Asset is what the recognition service gets to look at.
type Asset struct {
	SubmissionID int64
	MediaType    string
	ContentHash  []byte
	Data         []byte
}

// Scores is the raw assessment of an asset.
type Scores struct {
	Originality uint16
	Visibility  uint16
	// Reason is an optional explanation from the scorer.
	Reason string
}

// Scorer rates an asset.
type Scorer interface {
	Score(ctx context.Context, a Asset) (Scores, error)
}

// Policy holds the approval thresholds.
type Policy struct {
	MinOriginality uint16
	MinVisibility  uint16
}

// Decide applies the thresholds to scores.
func (p Policy) Decide(s Scores, now time.Time) models.Verdict {
	v := models.Verdict{
		Originality: s.Originality,
		Visibility:  s.Visibility,
		RecordedAt:  now,
	}
	switch {
	case s.Originality < p.MinOriginality:
		v.Reason = fmt.Sprintf("originality %d below %d", s.Originality, p.MinOriginality)
	case s.Visibility < p.MinVisibility:
		v.Reason = fmt.Sprintf("visibility %d below %d", s.Visibility, p.MinVisibility)
	default:
		v.Approved = true
		return v
	}
	if s.Reason != "" {
		v.Reason += ": " + s.Reason
	}
	return v
}

// Oracle assesses assets with a Scorer and a Policy.
type Oracle struct {
	scorer Scorer
	policy Policy
	now    func() time.Time
}

func NewOracle(scorer Scorer, policy Policy) *Oracle {
	return &Oracle{scorer: scorer, policy: policy, now: time.Now}
}

// Assess returns the verdict for a. Scorer failures and out-of-range scores
// are reported as common.ErrOracleUnavailable.
func (o *Oracle) Assess(ctx context.Context, a Asset) (models.Verdict, error) {
	s, err := o.scorer.Score(ctx, a)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}
	if s.Originality > MaxScore || s.Visibility > MaxScore {
		return models.Verdict{}, fmt.Errorf("%w: scores out of range (%d, %d)",
			common.ErrOracleUnavailable, s.Originality, s.Visibility)
	}
	return o.policy.Decide(s, o.now().UTC()), nil
}

// Static always returns the same scores. Development only.
type Static struct {
	Scores Scores
}

func (s Static) Score(context.Context, Asset) (Scores, error) {
	return s.Scores, nil
}
