package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicMethods are served without an access token.
var publicMethods = map[string]bool{
	fullMethod("Ping"): true,
}

const healthPrefix = "/grpc.health.v1.Health/"

// accessTokenInterceptor resolves the caller from the access_token metadata
// and stores it in the context.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] || strings.HasPrefix(info.FullMethod, healthPrefix) {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	caller, err := s.identity.Resolve(ctx, accessToken)
	if err != nil {
		s.logger.Warn(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return nil, toStatus(err)
	}

	return handler(identity.WithCaller(ctx, caller), req)
}
