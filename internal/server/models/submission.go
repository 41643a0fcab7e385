// Package models defines the server-side domain types persisted in the database.
package models

import (
	"fmt"
	"time"
)

// Submission is one user-initiated attempt to register and reward an asset.
type Submission struct {
	ID        int64
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Asset is set once ingestion is finalized.
	Asset *AssetMeta

	FeePaid bool
	// FeePaymentRef is the ledger reference of the settling payment.
	FeePaymentRef string

	// Verdict is the last recorded recognition outcome.
	Verdict *Verdict

	// Reward is set exactly when Status is Rewarded.
	Reward *Reward

	Status Status
}

// AssetMeta describes a finalized binary.
type AssetMeta struct {
	ContentHash []byte
	MediaType   string
	ByteSize    int64
	ChunkCount  int
	// StorageKey locates the bytes in the asset store.
	StorageKey string
}

// Verdict is the recognition outcome recorded against a submission.
type Verdict struct {
	Approved    bool
	Originality uint16
	Visibility  uint16
	Reason      string
	RecordedAt  time.Time
}

// Reward is the one-time token/transaction issued for an approved submission.
type Reward struct {
	TokenID  int64
	TxID     string
	IssuedAt time.Time
}

// CheckConsistency verifies that the optional fields agree with the status.
func (s *Submission) CheckConsistency() error {
	if s.Status == nil {
		return fmt.Errorf("submission %d: missing status", s.ID)
	}
	kind := s.Status.Kind()

	wantAsset := kind != KindPendingUpload
	wantFee := kind >= KindVerifying
	wantVerdict := kind >= KindVerified
	wantReward := kind == KindRewarded

	switch {
	case (s.Asset != nil) != wantAsset:
		return fmt.Errorf("submission %d: asset presence inconsistent with %s", s.ID, kind)
	case s.FeePaid != wantFee:
		return fmt.Errorf("submission %d: fee_paid inconsistent with %s", s.ID, kind)
	case (s.Verdict != nil) != wantVerdict:
		return fmt.Errorf("submission %d: verdict presence inconsistent with %s", s.ID, kind)
	case (s.Reward != nil) != wantReward:
		return fmt.Errorf("submission %d: reward presence inconsistent with %s", s.ID, kind)
	}

	if s.Verdict != nil {
		approved := kind == KindVerified || kind == KindRewarded
		if s.Verdict.Approved != approved {
			return fmt.Errorf("submission %d: verdict outcome inconsistent with %s", s.ID, kind)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate shared state.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	c := *s
	if s.Asset != nil {
		a := *s.Asset
		a.ContentHash = append([]byte(nil), s.Asset.ContentHash...)
		c.Asset = &a
	}
	if s.Verdict != nil {
		v := *s.Verdict
		c.Verdict = &v
	}
	if s.Reward != nil {
		r := *s.Reward
		c.Reward = &r
	}
	return &c
}
