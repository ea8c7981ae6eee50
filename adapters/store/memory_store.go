package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
)

// MemoryStore is an in-memory implementation of the TokenStore interface
type MemoryStore struct {
	tokens map[string]core.AuthToken
	mu     sync.RWMutex
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]core.AuthToken),
	}
}

// Put caches a token until it expires
func (s *MemoryStore) Put(ctx context.Context, key string, token *core.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[key] = *token

	// Drop entries that already expired so the map does not grow without bound
	now := time.Now()
	for k, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, k)
		}
	}

	return nil
}

// Get returns a cached token that has not expired yet
func (s *MemoryStore) Get(ctx context.Context, key string) (*core.AuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[key]
	if !exists || token.Expired(time.Now()) {
		return nil, core.ErrTokenNotFound
	}

	return &token, nil
}
