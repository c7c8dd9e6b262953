package ports

import (
	"context"
	"crypto/ed25519"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// KeyResolver resolves a signer DID to its ed25519 public key.
// Implementations must bound resolution time; a timeout is a hard failure,
// never implicit approval.
type KeyResolver interface {
	Resolve(ctx context.Context, did string) (ed25519.PublicKey, error)
}

// NonceStore manages nonce uniqueness for replay detection.
type NonceStore interface {
	// CheckAndSet atomically checks if a (wallet, nonce) pair was seen,
	// recording it if not. Returns true if the nonce is new (valid),
	// false if already used within the TTL window.
	CheckAndSet(ctx context.Context, walletID string, nonce string, ttl time.Duration) (bool, error)
}

// TransitionRequest holds validated input for a wallet status transition.
type TransitionRequest struct {
	WalletID       uuid.UUID
	NewStatus      domain.WalletStatus
	Reason         string
	Actor          string
	EffectiveUntil *time.Time // freeze expiry; only meaningful for FROZEN
}

// WalletRegistry owns wallet records and the validated status state machine.
type WalletRegistry interface {
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// IsActive applies any expired freeze-until timer (reverting the wallet
	// to ACTIVE) before answering. The returned wallet reflects the
	// post-reversion state; it is nil when the wallet does not exist.
	IsActive(ctx context.Context, id uuid.UUID) (bool, *domain.Wallet, error)
	Transition(ctx context.Context, req TransitionRequest) (*domain.Wallet, error)
}

// PolicyEvaluator applies transaction-limit, daily-budget and monthly-budget
// checks in that fixed order.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, wallet *domain.Wallet, amount int64, currency string, asOf time.Time) (*domain.PolicyDecision, error)
}

// SignatureVerifier validates request authenticity and freshness.
type SignatureVerifier interface {
	// Verify checks the hex-encoded ed25519 signature over payload against
	// the key resolved from signerDID.
	Verify(ctx context.Context, payload []byte, signatureHex string, signerDID string) error
	// CheckFreshness rejects stale timestamps and replayed nonces.
	CheckFreshness(ctx context.Context, walletID uuid.UUID, nonce string, timestamp int64, now time.Time) error
}

// AuthorizationService is the payment gateway: it composes wallet status,
// spend policy and signature checks into one decision and records approved
// spends in the ledger.
type AuthorizationService interface {
	Authorize(ctx context.Context, req domain.PaymentRequest) (*domain.PolicyDecision, error)
}

// AuditService records audit entries for every decision and transition.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// TokenService validates admin bearer tokens (issued externally).
type TokenService interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims for an admin caller.
type TokenClaims struct {
	Subject string
	Role    string
}
