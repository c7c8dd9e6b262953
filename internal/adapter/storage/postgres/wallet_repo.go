package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_ref, status, status_reason, per_transaction_limit, daily_limit, monthly_limit, currency, frozen_until, status_history, created_at, updated_at`

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	history, err := json.Marshal(w.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}

	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		w.ID, w.OwnerRef, string(w.Status), w.StatusReason,
		w.PerTransactionLimit, w.DailyLimit, w.MonthlyLimit,
		w.Currency, w.FrozenUntil, history, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID. Returns nil, nil when absent.
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w := &domain.Wallet{}
	var status string
	var history []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.OwnerRef, &status, &w.StatusReason,
		&w.PerTransactionLimit, &w.DailyLimit, &w.MonthlyLimit,
		&w.Currency, &w.FrozenUntil, &history, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	w.Status = domain.WalletStatus(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &w.StatusHistory); err != nil {
			return nil, fmt.Errorf("unmarshal status history: %w", err)
		}
	}
	return w, nil
}

// UpdateStatus persists a status transition as a compare-and-swap on the
// previous status. The WHERE clause is what keeps terminal REVOKED safe
// against lost-update interleavings at the storage layer.
func (r *WalletRepo) UpdateStatus(ctx context.Context, w *domain.Wallet, prev domain.WalletStatus) (bool, error) {
	history, err := json.Marshal(w.StatusHistory)
	if err != nil {
		return false, fmt.Errorf("marshal status history: %w", err)
	}

	query := `UPDATE wallets
		SET status = $1, status_reason = $2, frozen_until = $3, status_history = $4, updated_at = $5
		WHERE id = $6 AND status = $7`

	tag, err := r.pool.Exec(ctx, query,
		string(w.Status), w.StatusReason, w.FrozenUntil, history, w.UpdatedAt,
		w.ID, string(prev),
	)
	if err != nil {
		return false, fmt.Errorf("update wallet status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
