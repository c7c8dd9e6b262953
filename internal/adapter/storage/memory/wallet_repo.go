package memory

import (
	"context"
	"fmt"
	"sync"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// WalletRepo is a mutex-guarded in-memory wallet store.
type WalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

// NewWalletRepo creates an empty wallet store.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.ID]; ok {
		return fmt.Errorf("wallet %s already exists", w.ID)
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

// GetByID returns a copy of the wallet, or nil when absent.
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	cp.StatusHistory = append([]domain.StatusChange{}, w.StatusHistory...)
	return &cp, nil
}

// UpdateStatus persists a transition only if the stored status still
// matches prev.
func (r *WalletRepo) UpdateStatus(ctx context.Context, wallet *domain.Wallet, prev domain.WalletStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.wallets[wallet.ID]
	if !ok {
		return false, fmt.Errorf("wallet %s not found", wallet.ID)
	}
	if stored.Status != prev {
		return false, nil
	}
	cp := *wallet
	cp.StatusHistory = append([]domain.StatusChange{}, wallet.StatusHistory...)
	r.wallets[wallet.ID] = &cp
	return true, nil
}
