// Package grpc exposes the submission engine as artvault.v1.SubmissionService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/artvault/internal/logging"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address     string
	submissions SubmissionService
	identity    identity.Provider
	logger      logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, submissions SubmissionService, provider identity.Provider) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		submissions: submissions,
		identity:    provider,
	}
}

// newServer builds the grpc.Server with the service, health checks, tracing
// and the auth interceptor registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
	)

	RegisterSubmissionServiceServer(srv, s)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil {
		return err
	}
	return nil
}
