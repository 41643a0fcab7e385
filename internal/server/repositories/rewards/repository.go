package rewards

import (
	"context"
	"time"

	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// Repository is the ledger of issued reward tokens, at most one per submission.
type Repository interface {
	// Issue records a token for the submission unless one already exists and
	// returns whichever token is stored.
	Issue(ctx context.Context, submissionID int64, owner string, contentHash []byte, txID string, now time.Time) (*models.Reward, error)
	GetBySubmission(ctx context.Context, submissionID int64) (*models.Reward, error)
}
