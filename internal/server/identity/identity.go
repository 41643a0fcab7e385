// Package identity resolves the caller of a request and carries it in the
// request context.
package identity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/auth"
)

// Caller is the authenticated principal of one request.
type Caller struct {
	ID    string
	Admin bool
}

// Provider turns a presented credential into a Caller.
type Provider interface {
	Resolve(ctx context.Context, token string) (Caller, error)
}

// JWTProvider validates HS256 tokens issued by auth.GenerateToken.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret []byte) *JWTProvider {
	return &JWTProvider{secret: secret}
}

func (p *JWTProvider) Resolve(_ context.Context, token string) (Caller, error) {
	if token == "" {
		return Caller{}, common.ErrorUnauthorized
	}
	claims, err := auth.ParseToken(token, p.secret)
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return Caller{ID: claims.UserID, Admin: claims.Role == auth.RoleAdmin}, nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// FromContext returns the caller stored by WithCaller.
func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// MustCaller returns the caller or common.ErrorUnauthorized.
func MustCaller(ctx context.Context) (Caller, error) {
	c, ok := FromContext(ctx)
	if !ok || c.ID == "" {
		return Caller{}, common.ErrorUnauthorized
	}
	return c, nil
}

// RequireAdmin fails with common.ErrorForbidden for non-admin callers.
func RequireAdmin(ctx context.Context) (Caller, error) {
	c, err := MustCaller(ctx)
	if err != nil {
		return Caller{}, err
	}
	if !c.Admin {
		return Caller{}, common.ErrorForbidden
	}
	return c, nil
}
