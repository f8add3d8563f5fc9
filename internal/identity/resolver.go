// Package identity resolves bearer credentials into identity claims. Two
// resolvers exist: Static pins a fixed development identity, JWT validates
// externally issued tokens. The variant is chosen once at startup by
// configuration and injected where needed, handlers never branch on the
// auth mode themselves.
package identity

import (
	"context"

	"github.com/forvaidya/icomment/internal/domain"
)

// Claims is the provider-validated identity of a caller. Subject is the
// stable federated-subject claim; Username is the preferred handle used
// when the user record is first created.
type Claims struct {
	Subject  string
	Username string
	Email    *string
	Kind     domain.UserKind
}

type Resolver interface {
	// Resolve validates token and returns the caller's claims. It returns
	// domain.ErrUnauthorized when the token is missing, malformed, expired
	// or carries a bad signature.
	Resolve(ctx context.Context, token string) (*Claims, error)
}

// Static always resolves to a single fixed identity regardless of the
// presented token. Development and tests only.
type Static struct {
	claims Claims
}

func NewStatic(username string) *Static {
	return &Static{claims: Claims{
		Subject:  "static:" + username,
		Username: username,
		Kind:     domain.UserKindLocal,
	}}
}

func (s *Static) Resolve(_ context.Context, _ string) (*Claims, error) {
	claims := s.claims
	return &claims, nil
}
