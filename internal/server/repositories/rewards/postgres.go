// Package rewards stores issued reward tokens in PostgreSQL.
package rewards

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Issue(ctx context.Context, submissionID int64, owner string, contentHash []byte, txID string, now time.Time) (*models.Reward, error) {
	query := `INSERT INTO reward_tokens (submission_id, owner, content_hash, tx_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (submission_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, submissionID, owner, contentHash, txID, now); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.GetBySubmission(ctx, submissionID)
}

func (r *PostgresRepository) GetBySubmission(ctx context.Context, submissionID int64) (*models.Reward, error) {
	query := `SELECT token_id, tx_id, issued_at FROM reward_tokens WHERE submission_id=$1`

	var rw models.Reward
	err := r.db.QueryRowContext(ctx, query, submissionID).Scan(&rw.TokenID, &rw.TxID, &rw.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reward for submission %d: %w", submissionID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("failed to select reward: %w", err)
	}
	return &rw, nil
}
