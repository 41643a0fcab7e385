package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "artvault.v1.SubmissionService"

// SubmissionServiceServer is the server API of artvault.v1.SubmissionService.
type SubmissionServiceServer interface {
	StartSubmission(context.Context, *StartSubmissionRequest) (*Submission, error)
	PutChunk(context.Context, *PutChunkRequest) (*PutChunkResponse, error)
	FinalizeAsset(context.Context, *FinalizeAssetRequest) (*Asset, error)
	GetFeeInvoice(context.Context, *SubmissionRequest) (*Invoice, error)
	ConfirmFee(context.Context, *SubmissionRequest) (*Submission, error)
	TriggerVerification(context.Context, *SubmissionRequest) (*Submission, error)
	SetVerdict(context.Context, *SetVerdictRequest) (*Submission, error)
	GetSubmission(context.Context, *SubmissionRequest) (*Submission, error)
	FinalizeReward(context.Context, *SubmissionRequest) (*Reward, error)
	OverrideVerdict(context.Context, *OverrideVerdictRequest) (*Submission, error)
	ListOverrides(context.Context, *SubmissionRequest) (*ListOverridesResponse, error)
	ListApprovedArtwork(context.Context, *ListApprovedArtworkRequest) (*ListApprovedArtworkResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// unary builds the method descriptor of one RPC, running the server's
// interceptor chain the same way generated code does.
func unary[Req, Resp any](name string, call func(SubmissionServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SubmissionServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SubmissionServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SubmissionServiceDesc describes artvault.v1.SubmissionService for grpc.Server.RegisterService.
var SubmissionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SubmissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartSubmission", SubmissionServiceServer.StartSubmission),
		unary("PutChunk", SubmissionServiceServer.PutChunk),
		unary("FinalizeAsset", SubmissionServiceServer.FinalizeAsset),
		unary("GetFeeInvoice", SubmissionServiceServer.GetFeeInvoice),
		unary("ConfirmFee", SubmissionServiceServer.ConfirmFee),
		unary("TriggerVerification", SubmissionServiceServer.TriggerVerification),
		unary("SetVerdict", SubmissionServiceServer.SetVerdict),
		unary("GetSubmission", SubmissionServiceServer.GetSubmission),
		unary("FinalizeReward", SubmissionServiceServer.FinalizeReward),
		unary("OverrideVerdict", SubmissionServiceServer.OverrideVerdict),
		unary("ListOverrides", SubmissionServiceServer.ListOverrides),
		unary("ListApprovedArtwork", SubmissionServiceServer.ListApprovedArtwork),
		unary("Ping", SubmissionServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "artvault/v1/submission",
}

func RegisterSubmissionServiceServer(s grpc.ServiceRegistrar, srv SubmissionServiceServer) {
	s.RegisterService(&SubmissionServiceDesc, srv)
}
