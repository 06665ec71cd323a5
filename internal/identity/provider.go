// Package identity resolves the id of the calling user for a request.
package identity

import (
	"context"
	"errors"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
)

// DefaultUserClaim is the JWT claim holding the user id.
const DefaultUserClaim = "sub"

// ErrMissingIdentity is returned when no caller id can be resolved.
var ErrMissingIdentity = errors.New("caller identity is missing")

// Provider resolves the caller id from a request context.
type Provider interface {
	ResolveCallerID(ctx context.Context) (string, error)
}

// StaticProvider returns a fixed user id. Used in development mode.
type StaticProvider struct {
	UserID string
}

// ResolveCallerID implements Provider.
func (p StaticProvider) ResolveCallerID(ctx context.Context) (string, error) {
	if p.UserID == "" {
		return "", ErrMissingIdentity
	}
	return p.UserID, nil
}

// JWTClaimsProvider reads the caller id from the JWT authorizer claims of an
// API Gateway HTTP API request, as placed in the context by the Lambda adapter.
type JWTClaimsProvider struct {
	Claim string
}

// ResolveCallerID implements Provider.
func (p JWTClaimsProvider) ResolveCallerID(ctx context.Context) (string, error) {
	reqCtx, ok := core.GetAPIGatewayV2ContextFromContext(ctx)
	if !ok || reqCtx.Authorizer == nil || reqCtx.Authorizer.JWT == nil {
		return "", ErrMissingIdentity
	}
	claim := p.Claim
	if claim == "" {
		claim = DefaultUserClaim
	}
	id := reqCtx.Authorizer.JWT.Claims[claim]
	if id == "" {
		return "", ErrMissingIdentity
	}
	return id, nil
}

// New returns a StaticProvider in development mode and a JWTClaimsProvider otherwise.
func New(development bool, devUserID, claim string) Provider {
	if development {
		return StaticProvider{UserID: devUserID}
	}
	return JWTClaimsProvider{Claim: claim}
}
