// Package submissions stores submission records in PostgreSQL.
package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/dbx"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

const submissionColumns = `id, owner, status, created_at, updated_at,
	asset_hash, asset_media_type, asset_size, asset_chunks, asset_key,
	fee_paid, fee_payment_ref,
	verdict_approved, originality, visibility, verdict_reason, verdict_at,
	reward_token_id, reward_tx_id, rewarded_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new submission in PendingUpload and returns it with the
// id assigned by the sequence.
func (r *PostgresRepository) Create(ctx context.Context, owner string, now time.Time) (*models.Submission, error) {
	query := `INSERT INTO submissions (owner, status, created_at, updated_at, fee_paid)
		VALUES ($1, $2, $3, $3, FALSE) RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, owner, models.KindPendingUpload.String(), now).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return &models.Submission{
		ID:        id,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.PendingUpload{},
	}, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1 FOR UPDATE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id int64) (*models.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission %d: %w", id, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("failed to select submission: %w", err)
	}
	return s, nil
}

// ApplyTransition performs a compare-and-set on status. Fields absent from t
// keep their stored values.
func (r *PostgresRepository) ApplyTransition(ctx context.Context, id int64, t models.Transition, now time.Time) error {
	query := `UPDATE submissions SET
			status = $3,
			updated_at = $4,
			asset_hash = COALESCE($5, asset_hash),
			asset_media_type = COALESCE($6, asset_media_type),
			asset_size = COALESCE($7, asset_size),
			asset_chunks = COALESCE($8, asset_chunks),
			asset_key = COALESCE($9, asset_key),
			fee_paid = fee_paid OR $10,
			fee_payment_ref = COALESCE($11, fee_payment_ref),
			verdict_approved = COALESCE($12, verdict_approved),
			originality = COALESCE($13, originality),
			visibility = COALESCE($14, visibility),
			verdict_reason = COALESCE($15, verdict_reason),
			verdict_at = COALESCE($16, verdict_at),
			reward_token_id = COALESCE($17, reward_token_id),
			reward_tx_id = COALESCE($18, reward_tx_id),
			rewarded_at = COALESCE($19, rewarded_at)
		WHERE id = $1 AND status = $2`

	args := []any{id, t.From.String(), t.To.Kind().String(), now}
	args = append(args, assetArgs(t.Asset)...)
	args = append(args, t.To.Kind() == models.KindVerifying, nullString(t.FeePaymentRef))
	args = append(args, verdictArgs(t.Verdict)...)
	args = append(args, rewardArgs(t.Reward)...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		return r.explainMiss(ctx, id, t.From)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// explainMiss tells an unknown id apart from a status that moved on.
func (r *PostgresRepository) explainMiss(ctx context.Context, id int64, expected models.StatusKind) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM submissions WHERE id=$1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("submission %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to select status: %w", err)
	}
	return fmt.Errorf("%w: submission %d is %s, expected %s", common.ErrInvalidTransition, id, current, expected)
}

// Replace writes the complete record back.
func (r *PostgresRepository) Replace(ctx context.Context, s *models.Submission) error {
	query := `UPDATE submissions SET
			status = $2,
			updated_at = $3,
			asset_hash = $4,
			asset_media_type = $5,
			asset_size = $6,
			asset_chunks = $7,
			asset_key = $8,
			fee_paid = $9,
			fee_payment_ref = $10,
			verdict_approved = $11,
			originality = $12,
			visibility = $13,
			verdict_reason = $14,
			verdict_at = $15,
			reward_token_id = $16,
			reward_tx_id = $17,
			rewarded_at = $18
		WHERE id = $1`

	args := []any{s.ID, s.Status.Kind().String(), s.UpdatedAt}
	args = append(args, assetArgs(s.Asset)...)
	args = append(args, s.FeePaid, nullString(s.FeePaymentRef))
	args = append(args, verdictArgs(s.Verdict)...)
	args = append(args, rewardArgs(s.Reward)...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("submission %d: %w", s.ID, common.ErrorNotFound)
	}
	return nil
}

func (r *PostgresRepository) InsertOverride(ctx context.Context, o *models.Override) (int64, error) {
	query := `INSERT INTO submission_overrides (submission_id, from_status, to_status, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		o.SubmissionID, o.From.String(), o.To.String(), o.Reason, o.Actor, o.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert override: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListOverrides(ctx context.Context, submissionID int64) ([]*models.Override, error) {
	query := `SELECT id, submission_id, from_status, to_status, reason, actor, created_at
		FROM submission_overrides WHERE submission_id=$1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select overrides: %w", err)
	}
	defer rows.Close()

	var result []*models.Override
	for rows.Next() {
		var (
			o        models.Override
			from, to string
		)
		if err := rows.Scan(&o.ID, &o.SubmissionID, &from, &to, &o.Reason, &o.Actor, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.From, err = models.ParseStatusKind(from); err != nil {
			return nil, err
		}
		if o.To, err = models.ParseStatusKind(to); err != nil {
			return nil, err
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListApproved returns verified and rewarded submissions, newest verdict first.
func (r *PostgresRepository) ListApproved(ctx context.Context, limit, offset int) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE status IN ('verified', 'rewarded')
		ORDER BY verdict_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select approved submissions: %w", err)
	}
	defer rows.Close()

	var result []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountApproved(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE status IN ('verified', 'rewarded')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved submissions: %w", err)
	}
	return n, nil
}
