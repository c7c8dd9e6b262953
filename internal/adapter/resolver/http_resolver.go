// Package resolver provides KeyResolver adapters for the external
// DID-to-public-key resolution service.
package resolver

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPResolver resolves DIDs against an external resolution service over
// HTTP. The client timeout bounds resolution; callers additionally pass a
// deadline context, and either limit failing means the request is rejected.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver for the service at baseURL.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type resolveResponse struct {
	PublicKey string `json:"public_key"` // hex-encoded ed25519 key
}

// Resolve fetches the ed25519 public key registered for a DID.
func (r *HTTPResolver) Resolve(ctx context.Context, did string) (ed25519.PublicKey, error) {
	endpoint := fmt.Sprintf("%s/v1/resolve?did=%s", r.baseURL, url.QueryEscape(did))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build resolve request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", did, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve %s: unexpected status %d", did, resp.StatusCode)
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode resolve response: %w", err)
	}

	key, err := hex.DecodeString(body.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key for %s: %w", did, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key for %s has size %d, want %d", did, len(key), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(key), nil
}
