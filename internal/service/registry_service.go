package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const systemActor = "system"

// RegistryService implements ports.WalletRegistry. All status transitions
// go through Transition, which is the single place the transition matrix
// is enforced.
type RegistryService struct {
	repo  ports.WalletRepository
	audit ports.AuditService
	log   zerolog.Logger
	now   func() time.Time
}

// NewRegistryService creates a new RegistryService.
func NewRegistryService(repo ports.WalletRepository, audit ports.AuditService, log zerolog.Logger) *RegistryService {
	return &RegistryService{
		repo:  repo,
		audit: audit,
		log:   log,
		now:   time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *RegistryService) WithClock(now func() time.Time) *RegistryService {
	s.now = now
	return s
}

// GetWallet fetches a wallet by ID.
func (s *RegistryService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return w, nil
}

// IsActive reports whether the wallet may authorize payments. An expired
// freeze-until timer is applied lazily: the wallet reverts to ACTIVE
// before the answer is computed.
func (s *RegistryService) IsActive(ctx context.Context, id uuid.UUID) (bool, *domain.Wallet, error) {
	w, err := s.GetWallet(ctx, id)
	if err != nil {
		return false, nil, err
	}

	if w.FreezeExpired(s.now()) {
		reverted, err := s.Transition(ctx, ports.TransitionRequest{
			WalletID:  w.ID,
			NewStatus: domain.WalletStatusActive,
			Reason:    "freeze window elapsed",
			Actor:     systemActor,
		})
		if err != nil {
			// Another caller may have reverted or revoked it concurrently.
			// Re-read and answer from the stored state.
			s.log.Debug().Err(err).Str("wallet_id", w.ID.String()).Msg("lazy freeze reversion lost race")
			w, err = s.GetWallet(ctx, id)
			if err != nil {
				return false, nil, err
			}
		} else {
			w = reverted
		}
	}

	return w.IsActive(), w, nil
}

// Transition applies a validated status transition, appends status history
// and emits an audit event. REVOKED is terminal: the transition matrix has
// no outgoing edge from it, so no call can ever move a wallet out of REVOKED.
func (s *RegistryService) Transition(ctx context.Context, req ports.TransitionRequest) (*domain.Wallet, error) {
	if !req.NewStatus.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown wallet status %q", req.NewStatus))
	}
	if req.NewStatus.RequiresReason() && req.Reason == "" {
		return nil, apperror.ErrReasonRequired(string(req.NewStatus))
	}

	w, err := s.GetWallet(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}

	prev := w.Status
	if !prev.CanTransitionTo(req.NewStatus) {
		return nil, apperror.ErrInvalidTransition(string(prev), string(req.NewStatus))
	}

	now := s.now().UTC()
	updated := *w
	updated.Status = req.NewStatus
	updated.StatusReason = req.Reason
	updated.UpdatedAt = now
	updated.FrozenUntil = nil
	if req.NewStatus == domain.WalletStatusFrozen {
		updated.FrozenUntil = req.EffectiveUntil
	}
	updated.StatusHistory = append(append([]domain.StatusChange{}, w.StatusHistory...), domain.StatusChange{
		From:   prev,
		To:     req.NewStatus,
		Reason: req.Reason,
		Actor:  req.Actor,
		At:     now,
	})

	ok, err := s.repo.UpdateStatus(ctx, &updated, prev)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet status: %w", err))
	}
	if !ok {
		// Status changed under us; report against the fresh state.
		fresh, err := s.GetWallet(ctx, req.WalletID)
		if err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidTransition(string(fresh.Status), string(req.NewStatus))
	}

	s.auditTransition(ctx, &updated, prev, req)

	s.log.Info().
		Str("wallet_id", updated.ID.String()).
		Str("from", string(prev)).
		Str("to", string(updated.Status)).
		Str("actor", req.Actor).
		Msg("wallet status transitioned")

	return &updated, nil
}

func (s *RegistryService) auditTransition(ctx context.Context, w *domain.Wallet, prev domain.WalletStatus, req ports.TransitionRequest) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"from":   prev,
		"to":     w.Status,
		"reason": req.Reason,
	})
	walletID := w.ID
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		WalletID:     &walletID,
		Action:       domain.AuditActionStatusTransition,
		ResourceType: "wallet",
		ResourceID:   w.ID.String(),
		Actor:        req.Actor,
		Details:      string(details),
		CreatedAt:    s.now().UTC(),
	})
}
