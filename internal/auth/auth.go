// Package auth is the seam to the external session provider. The service
// only needs an opaque verified principal with a stable id; how tokens are
// minted is not this repo's concern.
package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid token")

type Principal struct {
	ID string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// StaticVerifier maps bearer tokens to principal ids. Good enough for
// deployments where the gateway terminates real sessions, and for tests.
type StaticVerifier struct {
	tokens map[string]string
}

func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// NewStaticVerifierFromEnv parses "token=userID;token2=userID2".
func NewStaticVerifierFromEnv(spec string) *StaticVerifier {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ";") {
		token, userID, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && token != "" && userID != "" {
			tokens[token] = userID
		}
	}
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (Principal, error) {
	userID, ok := v.tokens[token]
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: userID}, nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
