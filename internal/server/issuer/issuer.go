// Package issuer mints reward tokens for approved submissions.
package issuer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LocalIssuer mints tokens into the reward_tokens table. The unique
// submission id makes issuance idempotent: asking twice returns the first
// token.
type LocalIssuer struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newTxID     func() string
}

func NewLocalIssuer(db *sql.DB, repomanager repomanager.RepositoryManager) *LocalIssuer {
	return &LocalIssuer{
		db:          db,
		repomanager: repomanager,
		now:         time.Now,
		newTxID:     uuid.NewString,
	}
}

func (i *LocalIssuer) Issue(ctx context.Context, s *models.Submission) (*models.Reward, error) {
	if s.Asset == nil {
		return nil, fmt.Errorf("submission %d has no asset", s.ID)
	}

	repo := i.repomanager.Rewards(i.db)
	r, err := repo.Issue(ctx, s.ID, s.Owner, s.Asset.ContentHash, i.newTxID(), i.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIssuerUnavailable, err)
	}
	return r, nil
}
