package submissions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artvault/internal/server/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		s      models.Submission
		status string

		assetHash      []byte
		assetMediaType sql.NullString
		assetSize      sql.NullInt64
		assetChunks    sql.NullInt64
		assetKey       sql.NullString

		feeRef sql.NullString

		verdictApproved sql.NullBool
		originality     sql.NullInt64
		visibility      sql.NullInt64
		verdictReason   sql.NullString
		verdictAt       sql.NullTime

		rewardToken sql.NullInt64
		rewardTx    sql.NullString
		rewardedAt  sql.NullTime
	)

	err := row.Scan(&s.ID, &s.Owner, &status, &s.CreatedAt, &s.UpdatedAt,
		&assetHash, &assetMediaType, &assetSize, &assetChunks, &assetKey,
		&s.FeePaid, &feeRef,
		&verdictApproved, &originality, &visibility, &verdictReason, &verdictAt,
		&rewardToken, &rewardTx, &rewardedAt)
	if err != nil {
		return nil, err
	}

	if assetSize.Valid {
		s.Asset = &models.AssetMeta{
			ContentHash: assetHash,
			MediaType:   assetMediaType.String,
			ByteSize:    assetSize.Int64,
			ChunkCount:  int(assetChunks.Int64),
			StorageKey:  assetKey.String,
		}
	}
	s.FeePaymentRef = feeRef.String

	if verdictApproved.Valid {
		s.Verdict = &models.Verdict{
			Approved:    verdictApproved.Bool,
			Originality: uint16(originality.Int64),
			Visibility:  uint16(visibility.Int64),
			Reason:      verdictReason.String,
			RecordedAt:  verdictAt.Time,
		}
	}

	if rewardToken.Valid {
		s.Reward = &models.Reward{
			TokenID:  rewardToken.Int64,
			TxID:     rewardTx.String,
			IssuedAt: rewardedAt.Time,
		}
	}

	kind, err := models.ParseStatusKind(status)
	if err != nil {
		return nil, err
	}
	s.Status, err = statusFor(kind, s.Verdict)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", s.ID, err)
	}

	return &s, nil
}

// statusFor rebuilds the status variant; verdict-bearing variants take their
// payload from the stored verdict.
func statusFor(kind models.StatusKind, v *models.Verdict) (models.Status, error) {
	switch kind {
	case models.KindPendingUpload:
		return models.PendingUpload{}, nil
	case models.KindAwaitingFee:
		return models.AwaitingFee{}, nil
	case models.KindVerifying:
		return models.Verifying{}, nil
	case models.KindVerified, models.KindRejected:
		if v == nil {
			return nil, fmt.Errorf("%s without verdict", kind)
		}
		return models.StatusFromVerdict(*v), nil
	case models.KindRewarded:
		return models.Rewarded{}, nil
	}
	return nil, fmt.Errorf("unknown status kind %d", kind)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func assetArgs(a *models.AssetMeta) []any {
	if a == nil {
		return []any{nil, nil, nil, nil, nil}
	}
	return []any{a.ContentHash, a.MediaType, a.ByteSize, int64(a.ChunkCount), nullString(a.StorageKey)}
}

func verdictArgs(v *models.Verdict) []any {
	if v == nil {
		return []any{nil, nil, nil, nil, nil}
	}
	return []any{v.Approved, int64(v.Originality), int64(v.Visibility), v.Reason, v.RecordedAt}
}

func rewardArgs(r *models.Reward) []any {
	if r == nil {
		return []any{nil, nil, nil}
	}
	var issued *time.Time
	if !r.IssuedAt.IsZero() {
		issued = &r.IssuedAt
	}
	return []any{r.TokenID, r.TxID, issued}
}
