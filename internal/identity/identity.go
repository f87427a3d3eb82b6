// Package identity defines the principal resolution collaborator. Session
// management is external; the core only resolves an opaque bearer credential
// to an account id.
package identity

import (
	"errors"
	"sync"
)

// ErrUnknownCredential means the credential maps to no account.
var ErrUnknownCredential = errors.New("unknown credential")

// PrincipalKey is the request context key holding the resolved account id.
const PrincipalKey = "principal"

// Resolver resolves a bearer credential to an account id.
type Resolver interface {
	Resolve(credential string) (string, error)
}

// Static is a fixed credential-to-account mapping.
type Static struct {
	mu       sync.RWMutex
	accounts map[string]string
}

// NewStatic creates a resolver over the given credential -> account id map.
func NewStatic(accounts map[string]string) *Static {
	m := make(map[string]string, len(accounts))
	for k, v := range accounts {
		m[k] = v
	}
	return &Static{accounts: m}
}

// Resolve returns the account id for the credential.
func (s *Static) Resolve(credential string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accounts[credential]
	if !ok {
		return "", ErrUnknownCredential
	}
	return id, nil
}

// Register adds or replaces a credential mapping.
func (s *Static) Register(credential, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[credential] = accountID
}
