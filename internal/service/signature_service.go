package service

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"time"

	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SignatureService implements ports.SignatureVerifier using ed25519 over
// the canonical request payload. The signer's public key is resolved from
// its DID with a bounded timeout; any resolution failure is a hard
// rejection, never an implicit approval.
type SignatureService struct {
	resolver       ports.KeyResolver
	nonces         ports.NonceStore
	validityWindow time.Duration
	resolveTimeout time.Duration
	log            zerolog.Logger
}

// NewSignatureService creates a new SignatureService.
func NewSignatureService(
	resolver ports.KeyResolver,
	nonces ports.NonceStore,
	validityWindow time.Duration,
	resolveTimeout time.Duration,
	log zerolog.Logger,
) *SignatureService {
	return &SignatureService{
		resolver:       resolver,
		nonces:         nonces,
		validityWindow: validityWindow,
		resolveTimeout: resolveTimeout,
		log:            log,
	}
}

// Verify checks the hex-encoded ed25519 signature over payload against the
// key resolved from signerDID.
func (s *SignatureService) Verify(ctx context.Context, payload []byte, signatureHex string, signerDID string) error {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return apperror.ErrInvalidSignature()
	}

	rctx, cancel := context.WithTimeout(ctx, s.resolveTimeout)
	defer cancel()

	pub, err := s.resolver.Resolve(rctx, signerDID)
	if err != nil {
		s.log.Warn().Err(err).Str("signer_did", signerDID).Msg("DID resolution failed")
		return apperror.ErrVerificationUnavailable(err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return apperror.ErrInvalidSignature()
	}

	if !ed25519.Verify(pub, payload, sig) {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

// CheckFreshness rejects requests whose timestamp falls outside the
// validity window, then consumes the (wallet, nonce) pair. The nonce
// seen-set TTL equals the validity window, so entries expire exactly when
// the timestamp check alone would reject a replay.
func (s *SignatureService) CheckFreshness(ctx context.Context, walletID uuid.UUID, nonce string, timestamp int64, now time.Time) error {
	drift := now.Sub(time.Unix(timestamp, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > s.validityWindow {
		return apperror.ErrSignatureExpired()
	}

	fresh, err := s.nonces.CheckAndSet(ctx, walletID.String(), nonce, s.validityWindow)
	if err != nil {
		// Fail closed: if replay state is unknowable, reject.
		s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("nonce store unavailable")
		return apperror.ErrVerificationUnavailable(err)
	}
	if !fresh {
		return apperror.ErrReplayDetected()
	}
	return nil
}
