package submissions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/artvault/internal/server/models"
)

// Repository persists submissions and their override audit trail.
type Repository interface {
	Create(ctx context.Context, owner string, now time.Time) (*models.Submission, error)
	Get(ctx context.Context, id int64) (*models.Submission, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Submission, error)
	// ApplyTransition moves the submission along t only if its current status
	// is t.From.
	ApplyTransition(ctx context.Context, id int64, t models.Transition, now time.Time) error
	// Replace overwrites every mutable column. Used by the override path.
	Replace(ctx context.Context, s *models.Submission) error

	InsertOverride(ctx context.Context, o *models.Override) (int64, error)
	ListOverrides(ctx context.Context, submissionID int64) ([]*models.Override, error)

	ListApproved(ctx context.Context, limit, offset int) ([]*models.Submission, error)
	CountApproved(ctx context.Context) (int64, error)
}
