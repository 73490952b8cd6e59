package ledger

import (
	"context"
	"sync"
)

// =============================================================================
// IDENTITY COLLABORATOR - Credential to principal resolution
// =============================================================================

// Credential is an opaque bearer token presented by a caller. The engine
// never interprets its internals.
type Credential string

// PrincipalResolver maps a credential to its principal, once per incoming
// request. A missing or unknown credential fails with ErrUnauthenticated.
type PrincipalResolver interface {
	Resolve(ctx context.Context, cred Credential) (PrincipalID, error)
}

// StaticResolver resolves principals from a fixed token table. It stands in
// for a real identity provider in tests and single-user deployments.
type StaticResolver struct {
	mu     sync.RWMutex
	tokens map[Credential]PrincipalID
}

func NewStaticResolver(tokens map[Credential]PrincipalID) *StaticResolver {
	table := make(map[Credential]PrincipalID, len(tokens))
	for cred, p := range tokens {
		table[cred] = p
	}
	return &StaticResolver{tokens: table}
}

func (r *StaticResolver) Resolve(_ context.Context, cred Credential) (PrincipalID, error) {
	if cred == "" {
		return "", ErrUnauthenticated
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.tokens[cred]
	if !ok {
		return "", ErrUnauthenticated
	}
	return p, nil
}

// Grant registers a credential. Used by tests and bootstrap code.
func (r *StaticResolver) Grant(cred Credential, principal PrincipalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[cred] = principal
}
