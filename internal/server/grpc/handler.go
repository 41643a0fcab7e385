package grpc

import (
	"context"
	"encoding/hex"

	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SubmissionService is the engine API the handlers translate to.
type SubmissionService interface {
	StartSubmission(ctx context.Context) (*models.Submission, error)
	PutChunk(ctx context.Context, id int64, index int, data []byte) error
	FinalizeAsset(ctx context.Context, id int64, mediaType string, declaredSize int64, declaredHash []byte) (*models.AssetMeta, error)
	GetFeeInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	ConfirmFee(ctx context.Context, id int64) (*models.Submission, error)
	TriggerVerification(ctx context.Context, id int64) (*models.Submission, error)
	SetVerdict(ctx context.Context, id int64, originality, visibility uint32, reason string) (*models.Submission, error)
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)
	FinalizeReward(ctx context.Context, id int64) (*models.Reward, error)
	OverrideVerdict(ctx context.Context, id int64, to models.Status, reason string) (*models.Submission, error)
	ListOverrides(ctx context.Context, id int64) ([]*models.Override, error)
	ListApprovedArtwork(ctx context.Context, limit, offset int) ([]services.ApprovedArtwork, int64, error)
}

var _ SubmissionService = (*services.SubmissionService)(nil)

func (s *GRPCServer) StartSubmission(ctx context.Context, _ *StartSubmissionRequest) (*Submission, error) {
	sub, err := s.submissions.StartSubmission(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) PutChunk(ctx context.Context, req *PutChunkRequest) (*PutChunkResponse, error) {
	if err := s.submissions.PutChunk(ctx, req.SubmissionID, req.Index, req.Data); err != nil {
		return nil, toStatus(err)
	}
	return &PutChunkResponse{}, nil
}

func (s *GRPCServer) FinalizeAsset(ctx context.Context, req *FinalizeAssetRequest) (*Asset, error) {
	hash, err := hex.DecodeString(req.ContentHash)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "content_hash must be hex encoded")
	}

	meta, err := s.submissions.FinalizeAsset(ctx, req.SubmissionID, req.MediaType, req.Size, hash)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAsset(meta), nil
}

func (s *GRPCServer) GetFeeInvoice(ctx context.Context, req *SubmissionRequest) (*Invoice, error) {
	inv, err := s.submissions.GetFeeInvoice(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toInvoice(inv), nil
}

func (s *GRPCServer) ConfirmFee(ctx context.Context, req *SubmissionRequest) (*Submission, error) {
	sub, err := s.submissions.ConfirmFee(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) TriggerVerification(ctx context.Context, req *SubmissionRequest) (*Submission, error) {
	sub, err := s.submissions.TriggerVerification(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) SetVerdict(ctx context.Context, req *SetVerdictRequest) (*Submission, error) {
	sub, err := s.submissions.SetVerdict(ctx, req.SubmissionID, req.Originality, req.Visibility, req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) GetSubmission(ctx context.Context, req *SubmissionRequest) (*Submission, error) {
	sub, err := s.submissions.GetSubmission(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) FinalizeReward(ctx context.Context, req *SubmissionRequest) (*Reward, error) {
	r, err := s.submissions.FinalizeReward(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toReward(r), nil
}

func (s *GRPCServer) OverrideVerdict(ctx context.Context, req *OverrideVerdictRequest) (*Submission, error) {
	to, err := statusFromRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sub, err := s.submissions.OverrideVerdict(ctx, req.SubmissionID, to, req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSubmission(sub), nil
}

func (s *GRPCServer) ListOverrides(ctx context.Context, req *SubmissionRequest) (*ListOverridesResponse, error) {
	out, err := s.submissions.ListOverrides(ctx, req.SubmissionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toOverrides(out), nil
}

func (s *GRPCServer) ListApprovedArtwork(ctx context.Context, req *ListApprovedArtworkRequest) (*ListApprovedArtworkResponse, error) {
	page, total, err := s.submissions.ListApprovedArtwork(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, toStatus(err)
	}
	return toArtworks(page, total), nil
}

func (s *GRPCServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}
