package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/services"
)

// fakeService records what the handlers pass in and answers with canned
// values or err.
type fakeService struct {
	mu  sync.Mutex
	err error

	caller   identity.Caller
	id       int64
	index    int
	data     []byte
	hash     []byte
	override models.Status
	reason   string
	limit    int
	offset   int
}

var created = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func (f *fakeService) record(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caller, _ = identity.FromContext(ctx)
	f.id = id
	return f.err
}

func (f *fakeService) sub(id int64) *models.Submission {
	return &models.Submission{ID: id, Owner: f.caller.ID, CreatedAt: created, UpdatedAt: created, Status: models.PendingUpload{}}
}

func (f *fakeService) StartSubmission(ctx context.Context) (*models.Submission, error) {
	if err := f.record(ctx, 1); err != nil {
		return nil, err
	}
	return f.sub(1), nil
}

func (f *fakeService) PutChunk(ctx context.Context, id int64, index int, data []byte) error {
	if err := f.record(ctx, id); err != nil {
		return err
	}
	f.index, f.data = index, data
	return nil
}

func (f *fakeService) FinalizeAsset(ctx context.Context, id int64, mediaType string, size int64, hash []byte) (*models.AssetMeta, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	f.hash = hash
	return &models.AssetMeta{ContentHash: hash, MediaType: mediaType, ByteSize: size, ChunkCount: 2, StorageKey: "submissions/1/asset"}, nil
}

func (f *fakeService) GetFeeInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	return &models.Invoice{SubmissionID: id, Amount: 5, Memo: 9, Subaccount: []byte{0xab, 0xcd}}, nil
}

func (f *fakeService) ConfirmFee(ctx context.Context, id int64) (*models.Submission, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	return f.sub(id), nil
}

func (f *fakeService) TriggerVerification(ctx context.Context, id int64) (*models.Submission, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	s := f.sub(id)
	s.Status = models.Verified{Originality: 80, Visibility: 70}
	s.Verdict = &models.Verdict{Approved: true, Originality: 80, Visibility: 70, RecordedAt: created}
	return s, nil
}

func (f *fakeService) SetVerdict(ctx context.Context, id int64, originality, visibility uint32, reason string) (*models.Submission, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	f.reason = reason
	s := f.sub(id)
	s.Status = models.Rejected{Reason: reason}
	return s, nil
}

func (f *fakeService) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	return f.sub(id), nil
}

func (f *fakeService) FinalizeReward(ctx context.Context, id int64) (*models.Reward, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	return &models.Reward{TokenID: 7, TxID: "tx", IssuedAt: created}, nil
}

func (f *fakeService) OverrideVerdict(ctx context.Context, id int64, to models.Status, reason string) (*models.Submission, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	f.override, f.reason = to, reason
	s := f.sub(id)
	s.Status = to
	return s, nil
}

func (f *fakeService) ListOverrides(ctx context.Context, id int64) ([]*models.Override, error) {
	if err := f.record(ctx, id); err != nil {
		return nil, err
	}
	return []*models.Override{{ID: 1, SubmissionID: id, From: models.KindVerified, To: models.KindRejected, Reason: "dmca", Actor: "root", CreatedAt: created}}, nil
}

func (f *fakeService) ListApprovedArtwork(ctx context.Context, limit, offset int) ([]services.ApprovedArtwork, int64, error) {
	if err := f.record(ctx, 0); err != nil {
		return nil, 0, err
	}
	f.limit, f.offset = limit, offset
	s := f.sub(3)
	s.Status = models.Rewarded{}
	return []services.ApprovedArtwork{{Submission: s, URL: "https://cdn/3"}}, 12, nil
}
