package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// FinalizeReward issues the reward of a verified submission and seals it in
// Rewarded. Calling it again returns the stored reward without contacting
// the issuer.
func (s *SubmissionService) FinalizeReward(ctx context.Context, id int64) (reward *models.Reward, err error) {
	ctx, span := s.start(ctx, "FinalizeReward", id)
	defer func() { s.end(ctx, span, "FinalizeReward", id, err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	sub, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sub); err != nil {
		return nil, err
	}

	switch kind := sub.Status.Kind(); kind {
	case models.KindRewarded:
		return sub.Reward, nil
	case models.KindVerified:
	default:
		return nil, wrongState(id, kind, models.KindVerified)
	}

	done := s.collaborator("issuer")
	reward, err = s.issuer.Issue(ctx, sub)
	done()
	if err != nil {
		if errors.Is(err, common.ErrIssuerUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrIssuerUnavailable, err)
	}

	if err := s.registry.Transition(ctx, id, models.Transition{
		From:   models.KindVerified,
		To:     models.Rewarded{},
		Reward: reward,
	}); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "reward issued", "submission_id", id, "token_id", reward.TokenID, "tx_id", reward.TxID)
	return reward, nil
}
