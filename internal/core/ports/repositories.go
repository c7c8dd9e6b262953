package ports

import (
	"context"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	// GetByID returns nil, nil when the wallet does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// UpdateStatus persists a status transition as a compare-and-swap on the
	// previous status. Returns false when the stored status no longer matches
	// prev, in which case nothing was written.
	UpdateStatus(ctx context.Context, wallet *domain.Wallet, prev domain.WalletStatus) (bool, error)
}

// SpendLedger is the append-only store of approved spend amounts.
// Implementations must aggregate per wallet and currency; currencies are
// never converted or summed together.
type SpendLedger interface {
	// RecordSpend appends a spend record. Insertion is idempotent by
	// RequestID: a duplicate returns the existing record and inserted=false.
	RecordSpend(ctx context.Context, rec domain.SpendRecord) (domain.SpendRecord, bool, error)
	// DailySpend sums approved spend over the daily window containing asOf.
	DailySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error)
	// MonthlySpend sums approved spend over the monthly window containing asOf.
	MonthlySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error)
}

// AuditRepository defines persistence for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
