package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls artvault.v1.SubmissionService over an existing connection
// using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StartSubmission(ctx context.Context, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "StartSubmission", &StartSubmissionRequest{}, opts)
}

func (c *Client) PutChunk(ctx context.Context, in *PutChunkRequest, opts ...grpc.CallOption) error {
	_, err := invoke[PutChunkResponse](ctx, c.cc, "PutChunk", in, opts)
	return err
}

func (c *Client) FinalizeAsset(ctx context.Context, in *FinalizeAssetRequest, opts ...grpc.CallOption) (*Asset, error) {
	return invoke[Asset](ctx, c.cc, "FinalizeAsset", in, opts)
}

func (c *Client) GetFeeInvoice(ctx context.Context, id int64, opts ...grpc.CallOption) (*Invoice, error) {
	return invoke[Invoice](ctx, c.cc, "GetFeeInvoice", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) ConfirmFee(ctx context.Context, id int64, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "ConfirmFee", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) TriggerVerification(ctx context.Context, id int64, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "TriggerVerification", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) SetVerdict(ctx context.Context, in *SetVerdictRequest, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "SetVerdict", in, opts)
}

func (c *Client) GetSubmission(ctx context.Context, id int64, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "GetSubmission", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) FinalizeReward(ctx context.Context, id int64, opts ...grpc.CallOption) (*Reward, error) {
	return invoke[Reward](ctx, c.cc, "FinalizeReward", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) OverrideVerdict(ctx context.Context, in *OverrideVerdictRequest, opts ...grpc.CallOption) (*Submission, error) {
	return invoke[Submission](ctx, c.cc, "OverrideVerdict", in, opts)
}

func (c *Client) ListOverrides(ctx context.Context, id int64, opts ...grpc.CallOption) (*ListOverridesResponse, error) {
	return invoke[ListOverridesResponse](ctx, c.cc, "ListOverrides", &SubmissionRequest{SubmissionID: id}, opts)
}

func (c *Client) ListApprovedArtwork(ctx context.Context, in *ListApprovedArtworkRequest, opts ...grpc.CallOption) (*ListApprovedArtworkResponse, error) {
	return invoke[ListApprovedArtworkResponse](ctx, c.cc, "ListApprovedArtwork", in, opts)
}

func (c *Client) Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", &PingRequest{}, opts)
}
