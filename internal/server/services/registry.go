package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/dbx"
	"github.com/dmitrijs2005/artvault/internal/logging"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/repomanager"
)

// Registry owns the canonical submission records. Every status change goes
// through Transition or Override.
type Registry struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *Metrics
	log         logging.Logger
	now         func() time.Time
}

func NewRegistry(db *sql.DB, m repomanager.RepositoryManager, metrics *Metrics, log logging.Logger) *Registry {
	return &Registry{
		db:          db,
		repomanager: m,
		metrics:     metrics,
		log:         log.With("module", "registry"),
		now:         time.Now,
	}
}

// Create registers a new submission in PendingUpload.
func (r *Registry) Create(ctx context.Context, owner string) (*models.Submission, error) {
	if owner == "" {
		return nil, common.ErrorUnauthorized
	}
	s, err := r.repomanager.Submissions(r.db).Create(ctx, owner, r.now().UTC())
	if err != nil {
		return nil, err
	}
	r.log.Info(ctx, "submission created", "submission_id", s.ID, "owner", owner)
	return s, nil
}

func (r *Registry) Get(ctx context.Context, id int64) (*models.Submission, error) {
	return r.repomanager.Submissions(r.db).Get(ctx, id)
}

// Transition applies t if the stored status still equals t.From. It fails
// with ErrInvalidTransition when the edge is not part of the lifecycle, when
// t carries fields that do not belong to the edge, or when the status moved
// on; with ErrorNotFound for an unknown id.
func (r *Registry) Transition(ctx context.Context, id int64, t models.Transition) error {
	if err := validateTransition(t); err != nil {
		return err
	}

	if err := r.repomanager.Submissions(r.db).ApplyTransition(ctx, id, t, r.now().UTC()); err != nil {
		return err
	}

	r.metrics.transitions.WithLabelValues(t.From.String(), t.To.Kind().String()).Inc()
	r.log.Info(ctx, "status changed", "submission_id", id, "from", t.From, "to", t.To.Kind())
	return nil
}

func validateTransition(t models.Transition) error {
	if t.To == nil || !models.CanTransition(t.From, t.To.Kind()) {
		return fmt.Errorf("%w: %s -> %v", common.ErrInvalidTransition, t.From, kindOf(t.To))
	}

	to := t.To.Kind()
	carriesAsset := t.Asset != nil
	carriesFee := t.FeePaymentRef != ""
	carriesVerdict := t.Verdict != nil
	carriesReward := t.Reward != nil

	ok := false
	switch to {
	case models.KindAwaitingFee:
		ok = carriesAsset && !carriesFee && !carriesVerdict && !carriesReward
	case models.KindVerifying:
		ok = !carriesAsset && carriesFee && !carriesVerdict && !carriesReward
	case models.KindVerified, models.KindRejected:
		ok = !carriesAsset && !carriesFee && carriesVerdict && !carriesReward &&
			models.StatusFromVerdict(*t.Verdict) == t.To
	case models.KindRewarded:
		ok = !carriesAsset && !carriesFee && !carriesVerdict && carriesReward
	}
	if !ok {
		return fmt.Errorf("%w: fields do not match %s -> %s", common.ErrInvalidTransition, t.From, to)
	}
	return nil
}

func kindOf(s models.Status) any {
	if s == nil {
		return "nil"
	}
	return s.Kind()
}

// Override sets the status of a submission regardless of the lifecycle graph
// and appends an audit record. Fields that the new status must not carry are
// cleared; fields it requires but the submission lacks make the override fail
// with ErrInvalidOverride.
func (r *Registry) Override(ctx context.Context, id int64, to models.Status, reason, actor string) (*models.Submission, error) {
	if to == nil {
		return nil, fmt.Errorf("%w: missing target status", common.ErrInvalidOverride)
	}

	out, err := dbx.InTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Submission, error) {
		repo := r.repomanager.Submissions(tx)

		s, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		from := s.Status.Kind()

		now := r.now().UTC()
		next, err := normalizeOverride(s, to, reason, now)
		if err != nil {
			return nil, err
		}
		if err := repo.Replace(ctx, next); err != nil {
			return nil, err
		}

		if _, err := repo.InsertOverride(ctx, &models.Override{
			SubmissionID: id,
			From:         from,
			To:           to.Kind(),
			Reason:       reason,
			Actor:        actor,
			CreatedAt:    now,
		}); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.overrides.Inc()
	r.log.Warn(ctx, "status overridden", "submission_id", id, "to", to.Kind(), "actor", actor, "reason", reason)
	return out, nil
}

func normalizeOverride(s *models.Submission, to models.Status, reason string, now time.Time) (*models.Submission, error) {
	next := s.Clone()
	next.Status = to
	next.UpdatedAt = now

	clearFee := func() { next.FeePaid, next.FeePaymentRef = false, "" }
	needs := func(what string, ok bool) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: %s requires %s", common.ErrInvalidOverride, to.Kind(), what)
	}

	switch st := to.(type) {
	case models.PendingUpload:
		next.Asset = nil
		clearFee()
		next.Verdict, next.Reward = nil, nil
	case models.AwaitingFee:
		if err := needs("an asset", s.Asset != nil); err != nil {
			return nil, err
		}
		clearFee()
		next.Verdict, next.Reward = nil, nil
	case models.Verifying:
		if err := needs("a paid fee", s.Asset != nil && s.FeePaid); err != nil {
			return nil, err
		}
		next.Verdict, next.Reward = nil, nil
	case models.Verified:
		if err := needs("a paid fee", s.Asset != nil && s.FeePaid); err != nil {
			return nil, err
		}
		if st.Originality > maxScore || st.Visibility > maxScore {
			return nil, fmt.Errorf("%w: scores out of range", common.ErrInvalidOverride)
		}
		next.Verdict = &models.Verdict{Approved: true, Originality: st.Originality, Visibility: st.Visibility, RecordedAt: now}
		next.Reward = nil
	case models.Rejected:
		if err := needs("a paid fee", s.Asset != nil && s.FeePaid); err != nil {
			return nil, err
		}
		if st.Reason == "" {
			st.Reason = reason
			next.Status = st
		}
		v := &models.Verdict{Reason: st.Reason, RecordedAt: now}
		if s.Verdict != nil {
			v.Originality, v.Visibility = s.Verdict.Originality, s.Verdict.Visibility
		}
		next.Verdict = v
		next.Reward = nil
	case models.Rewarded:
		if err := needs("an issued reward", s.Reward != nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %T", common.ErrInvalidOverride, to)
	}

	if err := next.CheckConsistency(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidOverride, err)
	}
	return next, nil
}

// ListOverrides returns the audit trail of a submission, oldest first.
func (r *Registry) ListOverrides(ctx context.Context, id int64) ([]*models.Override, error) {
	repo := r.repomanager.Submissions(r.db)
	if _, err := repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListOverrides(ctx, id)
}

func (r *Registry) ListApproved(ctx context.Context, limit, offset int) ([]*models.Submission, error) {
	return r.repomanager.Submissions(r.db).ListApproved(ctx, limit, offset)
}

func (r *Registry) CountApproved(ctx context.Context) (int64, error) {
	return r.repomanager.Submissions(r.db).CountApproved(ctx)
}
