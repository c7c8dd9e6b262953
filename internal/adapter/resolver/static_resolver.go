package resolver

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
)

// StaticResolver is an in-process KeyResolver backed by a fixed DID-to-key
// map. Used in tests and single-tenant deployments where signer keys are
// provisioned out of band.
type StaticResolver struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

// NewStaticResolver creates an empty StaticResolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{keys: make(map[string]ed25519.PublicKey)}
}

// Register associates a DID with its public key.
func (r *StaticResolver) Register(did string, key ed25519.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[did] = key
}

// Resolve returns the registered key for a DID.
func (r *StaticResolver) Resolve(ctx context.Context, did string) (ed25519.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[did]
	if !ok {
		return nil, fmt.Errorf("did %s not registered", did)
	}
	return key, nil
}
