package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"agent-payment-gateway/internal/adapter/resolver"
	"agent-payment-gateway/internal/adapter/storage/memory"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatewayFixture wires the full authorization pipeline over in-memory
// adapters and a static key resolver.
type gatewayFixture struct {
	gateway  *GatewayService
	registry *RegistryService
	repo     *memory.WalletRepo
	ledger   *memory.Ledger
	resolver *resolver.StaticResolver
	priv     ed25519.PrivateKey
	did      string
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	log := zerolog.Nop()
	windows := domain.CalendarUTCWindows{}

	repo := memory.NewWalletRepo()
	ledger := memory.NewLedger(windows)
	nonces := memory.NewNonceCache()
	static := resolver.NewStaticResolver()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	did := "did:key:z6MkGatewayTest"
	static.Register(did, pub)

	audit := NewAuditService(nil, log)
	registry := NewRegistryService(repo, audit, log)
	policy := NewPolicyService(ledger, log)
	verifier := NewSignatureService(static, nonces, 5*time.Minute, time.Second, log)
	gateway := NewGatewayService(registry, policy, verifier, ledger, audit, nil, log)

	return &gatewayFixture{
		gateway:  gateway,
		registry: registry,
		repo:     repo,
		ledger:   ledger,
		resolver: static,
		priv:     priv,
		did:      did,
	}
}

func (f *gatewayFixture) createWallet(t *testing.T, perTx, daily, monthly *int64) *domain.Wallet {
	t.Helper()
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:                  uuid.New(),
		OwnerRef:            "agent-42",
		Status:              domain.WalletStatusActive,
		PerTransactionLimit: perTx,
		DailyLimit:          daily,
		MonthlyLimit:        monthly,
		Currency:            "USD",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	require.NoError(t, f.repo.Create(context.Background(), w))
	return w
}

// signedRequest builds a request whose signature is valid for the fixture key.
func (f *gatewayFixture) signedRequest(walletID uuid.UUID, requestID string, amount int64) domain.PaymentRequest {
	req := domain.PaymentRequest{
		RequestID: requestID,
		WalletID:  walletID,
		Amount:    amount,
		Currency:  "USD",
		Nonce:     "nonce-" + requestID,
		Timestamp: time.Now().UTC().Unix(),
		SignerDID: f.did,
	}
	req.Signature = hex.EncodeToString(ed25519.Sign(f.priv, req.CanonicalPayload()))
	return req
}

func TestGatewayService_Authorize_Approved(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, domain.Int64Ptr(5000), domain.Int64Ptr(10000), nil)

	d, err := f.gateway.Authorize(context.Background(), f.signedRequest(w.ID, "REQ-1", 1200))
	require.NoError(t, err)
	require.True(t, d.Approved())
	assert.Equal(t, "REQ-1", d.RequestID)
	require.NotNil(t, d.Details.DailyRemaining)
	assert.Equal(t, int64(8800), *d.Details.DailyRemaining)

	// The spend landed in the ledger.
	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1200), spent)
}

func TestGatewayService_Authorize_ValidationErrors(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	req := f.signedRequest(w.ID, "REQ-1", 100)
	req.Amount = 0
	_, err := f.gateway.Authorize(context.Background(), req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	req = f.signedRequest(w.ID, "REQ-2", 100)
	req.RequestID = ""
	_, err = f.gateway.Authorize(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestGatewayService_Authorize_WalletNotFound(t *testing.T) {
	f := newGatewayFixture(t)

	d, err := f.gateway.Authorize(context.Background(), f.signedRequest(uuid.New(), "REQ-1", 100))
	require.NoError(t, err, "an unknown wallet is a decision, not a pipeline failure")
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonWalletNotFound, d.ReasonCode)
}

func TestGatewayService_Authorize_InactiveWallet(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	_, err := f.registry.Transition(context.Background(), ports.TransitionRequest{
		WalletID:  w.ID,
		NewStatus: domain.WalletStatusFrozen,
		Reason:    "suspected key leak",
		Actor:     "risk-engine",
	})
	require.NoError(t, err)

	d, err := f.gateway.Authorize(context.Background(), f.signedRequest(w.ID, "REQ-1", 100))
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonWalletNotActive, d.ReasonCode)
	assert.Equal(t, string(domain.WalletStatusFrozen), d.Details.WalletStatus)
	assert.Equal(t, "suspected key leak", d.Details.StatusReason)

	// Nothing reached the ledger.
	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, spent)
}

func TestGatewayService_Authorize_BudgetRejectionBeforeSignatureWork(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, domain.Int64Ptr(500), nil, nil)

	// The signature on this request is garbage, but the per-transaction
	// limit rejects first, so the bad signature is never noticed.
	req := f.signedRequest(w.ID, "REQ-1", 501)
	req.Signature = hex.EncodeToString(make([]byte, ed25519.SignatureSize))

	d, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonTransactionLimit, d.ReasonCode)
}

func TestGatewayService_Authorize_InvalidSignature(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, domain.Int64Ptr(10000), nil)

	req := f.signedRequest(w.ID, "REQ-1", 100)
	req.Amount = 99 // tamper after signing; re-run validation passes, signature fails

	d, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonInvalidSignature, d.ReasonCode)

	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, spent, "a rejected request must never reach the ledger")
}

func TestGatewayService_Authorize_UnknownSigner_Unavailable(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	req := f.signedRequest(w.ID, "REQ-1", 100)
	req.SignerDID = "did:key:z6MkNeverRegistered"

	d, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonVerificationUnavailable, d.ReasonCode)
}

func TestGatewayService_Authorize_Replay(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	req := f.signedRequest(w.ID, "REQ-1", 100)

	first, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Approved())

	// Byte-identical resubmission: the nonce is already consumed.
	second, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.False(t, second.Approved())
	assert.Equal(t, domain.ReasonReplayDetected, second.ReasonCode)

	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(100), spent, "the replay must not double-charge")
}

func TestGatewayService_Authorize_StaleTimestamp(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	req := domain.PaymentRequest{
		RequestID: "REQ-1",
		WalletID:  w.ID,
		Amount:    100,
		Currency:  "USD",
		Nonce:     "nonce-old",
		Timestamp: time.Now().UTC().Add(-10 * time.Minute).Unix(),
		SignerDID: f.did,
	}
	req.Signature = hex.EncodeToString(ed25519.Sign(f.priv, req.CanonicalPayload()))

	d, err := f.gateway.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonSignatureExpired, d.ReasonCode)
}

func TestGatewayService_Authorize_DailyBudgetSequence(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, domain.Int64Ptr(1000), nil)

	// 400 + 400 fit; the third 400 would overshoot.
	for i := 1; i <= 2; i++ {
		d, err := f.gateway.Authorize(context.Background(), f.signedRequest(w.ID, fmt.Sprintf("REQ-%d", i), 400))
		require.NoError(t, err)
		require.True(t, d.Approved())
	}

	d, err := f.gateway.Authorize(context.Background(), f.signedRequest(w.ID, "REQ-3", 400))
	require.NoError(t, err)
	require.False(t, d.Approved())
	assert.Equal(t, domain.ReasonDailyBudget, d.ReasonCode)
	assert.Equal(t, "current_spend=800, limit=1000, remaining=200", d.Detail)

	// A smaller amount that fits the remainder still goes through.
	d, err = f.gateway.Authorize(context.Background(), f.signedRequest(w.ID, "REQ-4", 200))
	require.NoError(t, err)
	assert.True(t, d.Approved())
}

// Concurrent submissions against one nearly exhausted budget: exactly as
// many may commit as the remaining budget admits, never one more.
func TestGatewayService_Authorize_ConcurrentBudgetRace(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, domain.Int64Ptr(1000), nil)

	const (
		workers = 20
		amount  = 100
	)

	var (
		wg       sync.WaitGroup
		approved atomic.Int64
	)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.signedRequest(w.ID, fmt.Sprintf("REQ-%d", i), amount)
			<-start
			d, err := f.gateway.Authorize(context.Background(), req)
			if err != nil {
				t.Errorf("authorize: %v", err)
				return
			}
			if d.Approved() {
				approved.Add(1)
			} else if d.ReasonCode != domain.ReasonDailyBudget {
				t.Errorf("unexpected rejection reason %s", d.ReasonCode)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(10), approved.Load(), "exactly limit/amount requests may commit")

	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), spent, "total committed spend must never exceed the budget")
}

// Two requests that each fit the budget alone but not together: exactly one
// commits regardless of interleaving.
func TestGatewayService_Authorize_TwoRacingRequests(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, domain.Int64Ptr(100), nil)

	reqs := []domain.PaymentRequest{
		f.signedRequest(w.ID, "REQ-A", 60),
		f.signedRequest(w.ID, "REQ-B", 60),
	}

	var (
		wg       sync.WaitGroup
		approved atomic.Int64
	)
	for _, req := range reqs {
		wg.Add(1)
		go func(req domain.PaymentRequest) {
			defer wg.Done()
			d, err := f.gateway.Authorize(context.Background(), req)
			if err != nil {
				t.Errorf("authorize: %v", err)
				return
			}
			if d.Approved() {
				approved.Add(1)
			}
		}(req)
	}
	wg.Wait()

	assert.Equal(t, int64(1), approved.Load())

	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(60), spent, "60, never 120")
}

func TestGatewayService_Authorize_IdempotentLedgerWrite(t *testing.T) {
	f := newGatewayFixture(t)
	w := f.createWallet(t, nil, nil, nil)

	// Same request_id, fresh nonce each time: the ledger keys on request_id
	// so a retried delivery records at most one spend.
	for i := 0; i < 3; i++ {
		req := domain.PaymentRequest{
			RequestID: "REQ-RETRY",
			WalletID:  w.ID,
			Amount:    250,
			Currency:  "USD",
			Nonce:     fmt.Sprintf("nonce-%d", i),
			Timestamp: time.Now().UTC().Unix(),
			SignerDID: f.did,
		}
		req.Signature = hex.EncodeToString(ed25519.Sign(f.priv, req.CanonicalPayload()))

		d, err := f.gateway.Authorize(context.Background(), req)
		require.NoError(t, err)
		require.True(t, d.Approved())
	}

	spent, err := f.ledger.DailySpend(context.Background(), w.ID, "USD", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(250), spent)
}
