package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/recognition"
)

const maxScore = recognition.MaxScore

// TriggerVerification sends the stored asset to the oracle and records the
// verdict it returns.
func (s *SubmissionService) TriggerVerification(ctx context.Context, id int64) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "TriggerVerification", id)
	defer func() { s.end(ctx, span, "TriggerVerification", id, err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	sub, err = s.load(ctx, id, models.KindVerifying)
	if err != nil {
		return nil, err
	}

	done := s.collaborator("store")
	data, err := s.store.Get(ctx, sub.Asset.StorageKey)
	done()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: asset of submission %d missing from store", common.ErrorInternal, id)
		}
		return nil, err
	}

	done = s.collaborator("oracle")
	verdict, err := s.oracle.Assess(ctx, recognition.Asset{
		SubmissionID: id,
		MediaType:    sub.Asset.MediaType,
		ContentHash:  sub.Asset.ContentHash,
		Data:         data,
	})
	done()
	if err != nil {
		if errors.Is(err, common.ErrOracleUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}

	if err := s.recordVerdict(ctx, id, verdict); err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, id)
}

// SetVerdict records a verdict directly. An empty reason approves, any other
// reason rejects. Admin only.
func (s *SubmissionService) SetVerdict(ctx context.Context, id int64, originality, visibility uint32, reason string) (sub *models.Submission, err error) {
	ctx, span := s.start(ctx, "SetVerdict", id)
	defer func() { s.end(ctx, span, "SetVerdict", id, err) }()

	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if originality > maxScore || visibility > maxScore {
		return nil, fmt.Errorf("%w: scores (%d, %d) outside 0..%d", common.ErrInvalidVerdict, originality, visibility, maxScore)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.load(ctx, id, models.KindVerifying); err != nil {
		return nil, err
	}

	verdict := models.Verdict{
		Approved:    reason == "",
		Originality: uint16(originality),
		Visibility:  uint16(visibility),
		Reason:      reason,
		RecordedAt:  time.Now().UTC(),
	}
	if err := s.recordVerdict(ctx, id, verdict); err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, id)
}

func (s *SubmissionService) recordVerdict(ctx context.Context, id int64, v models.Verdict) error {
	if err := s.registry.Transition(ctx, id, models.Transition{
		From:    models.KindVerifying,
		To:      models.StatusFromVerdict(v),
		Verdict: &v,
	}); err != nil {
		return err
	}
	s.log.Info(ctx, "verdict recorded", "submission_id", id, "approved", v.Approved,
		"originality", v.Originality, "visibility", v.Visibility)
	return nil
}
