package grpc

import (
	"encoding/hex"
	"time"

	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/services"
)

type StartSubmissionRequest struct{}

type SubmissionRequest struct {
	SubmissionID int64 `json:"submission_id"`
}

type PutChunkRequest struct {
	SubmissionID int64  `json:"submission_id"`
	Index        int    `json:"index"`
	Data         []byte `json:"data"`
}

type PutChunkResponse struct{}

type FinalizeAssetRequest struct {
	SubmissionID int64  `json:"submission_id"`
	MediaType    string `json:"media_type"`
	Size         int64  `json:"size"`
	// ContentHash is the hex encoded SHA-256 of the whole asset.
	ContentHash string `json:"content_hash"`
}

type SetVerdictRequest struct {
	SubmissionID int64  `json:"submission_id"`
	Originality  uint32 `json:"originality"`
	Visibility   uint32 `json:"visibility"`
	// Reason rejects the submission when not empty.
	Reason string `json:"reason,omitempty"`
}

type OverrideVerdictRequest struct {
	SubmissionID int64  `json:"submission_id"`
	Status       string `json:"status"`
	Originality  uint16 `json:"originality,omitempty"`
	Visibility   uint16 `json:"visibility,omitempty"`
	// RejectionReason is stored in a Rejected status; Reason goes to the audit log.
	RejectionReason string `json:"rejection_reason,omitempty"`
	Reason          string `json:"reason"`
}

type ListApprovedArtworkRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type Asset struct {
	ContentHash string `json:"content_hash"`
	MediaType   string `json:"media_type"`
	ByteSize    int64  `json:"byte_size"`
	ChunkCount  int    `json:"chunk_count"`
	StorageKey  string `json:"storage_key"`
}

type Verdict struct {
	Approved    bool      `json:"approved"`
	Originality uint16    `json:"originality"`
	Visibility  uint16    `json:"visibility"`
	Reason      string    `json:"reason,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type Reward struct {
	TokenID  int64     `json:"token_id"`
	TxID     string    `json:"tx_id"`
	IssuedAt time.Time `json:"issued_at"`
}

type Submission struct {
	ID     int64  `json:"id"`
	Owner  string `json:"owner"`
	Status string `json:"status"`
	// Originality and Visibility are set in the verified status.
	Originality uint16 `json:"originality,omitempty"`
	Visibility  uint16 `json:"visibility,omitempty"`
	// RejectionReason is set in the rejected status.
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Asset           *Asset    `json:"asset,omitempty"`
	FeePaid         bool      `json:"fee_paid"`
	FeePaymentRef   string    `json:"fee_payment_ref,omitempty"`
	Verdict         *Verdict  `json:"verdict,omitempty"`
	Reward          *Reward   `json:"reward,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Invoice struct {
	SubmissionID int64  `json:"submission_id"`
	Amount       uint64 `json:"amount"`
	Memo         uint64 `json:"memo"`
	Subaccount   string `json:"subaccount"`
}

type Override struct {
	ID        int64     `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type ListOverridesResponse struct {
	Overrides []Override `json:"overrides"`
}

type Artwork struct {
	Submission *Submission `json:"submission"`
	URL        string      `json:"url"`
}

type ListApprovedArtworkResponse struct {
	Artworks []Artwork `json:"artworks"`
	Total    int64     `json:"total"`
}

func toAsset(a *models.AssetMeta) *Asset {
	if a == nil {
		return nil
	}
	return &Asset{
		ContentHash: hex.EncodeToString(a.ContentHash),
		MediaType:   a.MediaType,
		ByteSize:    a.ByteSize,
		ChunkCount:  a.ChunkCount,
		StorageKey:  a.StorageKey,
	}
}

func toReward(r *models.Reward) *Reward {
	if r == nil {
		return nil
	}
	return &Reward{TokenID: r.TokenID, TxID: r.TxID, IssuedAt: r.IssuedAt}
}

func toSubmission(s *models.Submission) *Submission {
	out := &Submission{
		ID:            s.ID,
		Owner:         s.Owner,
		Status:        s.Status.Kind().String(),
		Asset:         toAsset(s.Asset),
		FeePaid:       s.FeePaid,
		FeePaymentRef: s.FeePaymentRef,
		Reward:        toReward(s.Reward),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	switch st := s.Status.(type) {
	case models.Verified:
		out.Originality, out.Visibility = st.Originality, st.Visibility
	case models.Rejected:
		out.RejectionReason = st.Reason
	}
	if v := s.Verdict; v != nil {
		out.Verdict = &Verdict{
			Approved:    v.Approved,
			Originality: v.Originality,
			Visibility:  v.Visibility,
			Reason:      v.Reason,
			RecordedAt:  v.RecordedAt,
		}
	}
	return out
}

func toInvoice(inv *models.Invoice) *Invoice {
	return &Invoice{
		SubmissionID: inv.SubmissionID,
		Amount:       inv.Amount,
		Memo:         inv.Memo,
		Subaccount:   hex.EncodeToString(inv.Subaccount),
	}
}

func toOverrides(in []*models.Override) *ListOverridesResponse {
	out := &ListOverridesResponse{Overrides: make([]Override, 0, len(in))}
	for _, o := range in {
		out.Overrides = append(out.Overrides, Override{
			ID:        o.ID,
			From:      o.From.String(),
			To:        o.To.String(),
			Reason:    o.Reason,
			Actor:     o.Actor,
			CreatedAt: o.CreatedAt,
		})
	}
	return out
}

func toArtworks(page []services.ApprovedArtwork, total int64) *ListApprovedArtworkResponse {
	out := &ListApprovedArtworkResponse{Artworks: make([]Artwork, 0, len(page)), Total: total}
	for _, a := range page {
		out.Artworks = append(out.Artworks, Artwork{Submission: toSubmission(a.Submission), URL: a.URL})
	}
	return out
}

// statusFromRequest builds the override target named by req.Status.
func statusFromRequest(req *OverrideVerdictRequest) (models.Status, error) {
	kind, err := models.ParseStatusKind(req.Status)
	if err != nil {
		return nil, err
	}
	switch kind {
	case models.KindPendingUpload:
		return models.PendingUpload{}, nil
	case models.KindAwaitingFee:
		return models.AwaitingFee{}, nil
	case models.KindVerifying:
		return models.Verifying{}, nil
	case models.KindVerified:
		return models.Verified{Originality: req.Originality, Visibility: req.Visibility}, nil
	case models.KindRejected:
		return models.Rejected{Reason: req.RejectionReason}, nil
	default:
		return models.Rewarded{}, nil
	}
}
