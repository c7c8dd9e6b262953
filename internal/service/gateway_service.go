package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GatewayService implements ports.AuthorizationService. A request walks a
// fixed pipeline: wallet status, spend policy, signature/freshness, ledger
// record. The first failing step short-circuits to a REJECTED decision.
// Every outcome, approved or rejected, is audit-logged; rejections never
// touch the ledger.
//
// Budget correctness under concurrency: the policy pre-check and the
// signature checks run without any lock (so the DID resolver is never
// called while holding it), then policy is re-evaluated and the spend is
// recorded under a per-wallet mutex. The unlocked pre-check preserves
// fail-fast ordering of rejections; the locked re-check closes the
// check-then-act window, so racing requests can never jointly overshoot
// a budget.
type GatewayService struct {
	registry ports.WalletRegistry
	policy   ports.PolicyEvaluator
	verifier ports.SignatureVerifier
	ledger   ports.SpendLedger
	audit    ports.AuditService
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewGatewayService creates a new GatewayService. metrics may be nil.
func NewGatewayService(
	registry ports.WalletRegistry,
	policy ports.PolicyEvaluator,
	verifier ports.SignatureVerifier,
	ledger ports.SpendLedger,
	audit ports.AuditService,
	m *metrics.Metrics,
	log zerolog.Logger,
) *GatewayService {
	return &GatewayService{
		registry: registry,
		policy:   policy,
		verifier: verifier,
		ledger:   ledger,
		audit:    audit,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *GatewayService) WithClock(now func() time.Time) *GatewayService {
	s.now = now
	return s
}

// Authorize evaluates one signed payment request and returns its decision.
// A non-nil error means the pipeline itself failed (never an approval);
// policy and authenticity failures come back as REJECTED decisions.
func (s *GatewayService) Authorize(ctx context.Context, req domain.PaymentRequest) (*domain.PolicyDecision, error) {
	if req.Amount <= 0 {
		return nil, apperror.Validation("amount must be a positive integer in minor units")
	}
	if req.RequestID == "" {
		return nil, apperror.Validation("request_id is required")
	}

	started := s.now()
	now := started.UTC()

	// Step 1: wallet must exist and be active (lazy freeze-expiry applied).
	active, wallet, err := s.registry.IsActive(ctx, req.WalletID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == string(domain.ReasonWalletNotFound) {
			return s.finish(ctx, s.reject(req, now, domain.ReasonWalletNotFound, appErr.Message, domain.DecisionDetails{}), started), nil
		}
		return nil, err
	}
	if !active {
		details := domain.DecisionDetails{
			WalletStatus: string(wallet.Status),
			StatusReason: wallet.StatusReason,
		}
		detail := fmt.Sprintf("wallet is %s", wallet.Status)
		return s.finish(ctx, s.reject(req, now, domain.ReasonWalletNotActive, detail, details), started), nil
	}

	// Step 2: spend-policy pre-check, unlocked. Rejections here are final
	// and fail fast before any signature work.
	pre, err := s.policy.Evaluate(ctx, wallet, req.Amount, req.Currency, now)
	if err != nil {
		return nil, err
	}
	if !pre.Approved() {
		pre.RequestID = req.RequestID
		return s.finish(ctx, pre, started), nil
	}

	// Step 3: freshness then signature. The DID resolver may block; no
	// wallet lock is held here.
	if err := s.verifier.CheckFreshness(ctx, req.WalletID, req.Nonce, req.Timestamp, now); err != nil {
		return s.finish(ctx, s.rejectFromErr(req, now, err), started), nil
	}
	if err := s.verifier.Verify(ctx, req.CanonicalPayload(), req.Signature, req.SignerDID); err != nil {
		return s.finish(ctx, s.rejectFromErr(req, now, err), started), nil
	}

	// Step 4: re-evaluate and record atomically under the wallet lock.
	lock := s.walletLock(req.WalletID)
	lock.Lock()

	final, err := s.policy.Evaluate(ctx, wallet, req.Amount, req.Currency, now)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if !final.Approved() {
		lock.Unlock()
		final.RequestID = req.RequestID
		return s.finish(ctx, final, started), nil
	}

	_, inserted, err := s.ledger.RecordSpend(ctx, domain.SpendRecord{
		WalletID:   req.WalletID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		RequestID:  req.RequestID,
		RecordedAt: now,
	})
	lock.Unlock()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record spend: %w", err))
	}
	if inserted && s.metrics != nil {
		s.metrics.ObserveLedgerAppend()
	}

	final.RequestID = req.RequestID
	return s.finish(ctx, final, started), nil
}

// walletLock returns the serialization point for one wallet.
func (s *GatewayService) walletLock(id uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *GatewayService) reject(req domain.PaymentRequest, at time.Time, reason domain.ReasonCode, detail string, details domain.DecisionDetails) *domain.PolicyDecision {
	return &domain.PolicyDecision{
		RequestID:   req.RequestID,
		WalletID:    req.WalletID,
		Outcome:     domain.OutcomeRejected,
		ReasonCode:  reason,
		Detail:      detail,
		EvaluatedAt: at,
		Details:     details,
	}
}

// rejectFromErr maps a signature/freshness AppError onto a decision.
func (s *GatewayService) rejectFromErr(req domain.PaymentRequest, at time.Time, err error) *domain.PolicyDecision {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	return s.reject(req, at, domain.ReasonCode(appErr.Code), appErr.Message, domain.DecisionDetails{})
}

// finish emits the audit record and metrics for a completed decision.
// No decision leaves this service without passing through here.
func (s *GatewayService) finish(ctx context.Context, d *domain.PolicyDecision, started time.Time) *domain.PolicyDecision {
	elapsed := s.now().Sub(started)

	evt := s.log.Info()
	if !d.Approved() {
		evt = s.log.Warn()
	}
	evt.Str("request_id", d.RequestID).
		Str("wallet_id", d.WalletID.String()).
		Str("outcome", string(d.Outcome)).
		Str("reason", string(d.ReasonCode)).
		Dur("elapsed", elapsed).
		Msg("payment decision")

	if s.audit != nil {
		detailsJSON, _ := json.Marshal(d)
		walletID := d.WalletID
		s.audit.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			WalletID:     &walletID,
			Action:       domain.AuditActionDecision,
			ResourceType: "payment_request",
			ResourceID:   d.RequestID,
			Details:      string(detailsJSON),
			CreatedAt:    d.EvaluatedAt,
		})
	}
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(d.Outcome), string(d.ReasonCode), elapsed)
	}
	return d
}
