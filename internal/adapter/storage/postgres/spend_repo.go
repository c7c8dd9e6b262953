package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SpendRepo implements ports.SpendLedger on PostgreSQL. The table is
// append-only; request_id is the primary key, so duplicate inserts are
// no-ops and the existing row is read back.
type SpendRepo struct {
	pool    Pool
	windows domain.WindowPolicy
}

// NewSpendRepo creates a new SpendRepo using the given window policy.
func NewSpendRepo(pool Pool, windows domain.WindowPolicy) *SpendRepo {
	return &SpendRepo{pool: pool, windows: windows}
}

// RecordSpend appends a spend record idempotently by request ID.
func (r *SpendRepo) RecordSpend(ctx context.Context, rec domain.SpendRecord) (domain.SpendRecord, bool, error) {
	insert := `INSERT INTO spend_records (wallet_id, amount, currency, request_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (request_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, insert,
		rec.WalletID, rec.Amount, rec.Currency, rec.RequestID, rec.RecordedAt,
	)
	if err != nil {
		return domain.SpendRecord{}, false, fmt.Errorf("insert spend record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return rec, true, nil
	}

	// Duplicate request_id: return the existing record unchanged.
	query := `SELECT wallet_id, amount, currency, request_id, recorded_at
		FROM spend_records WHERE request_id = $1`

	existing := domain.SpendRecord{}
	err = r.pool.QueryRow(ctx, query, rec.RequestID).Scan(
		&existing.WalletID, &existing.Amount, &existing.Currency,
		&existing.RequestID, &existing.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SpendRecord{}, false, fmt.Errorf("spend record %s vanished after conflict", rec.RequestID)
		}
		return domain.SpendRecord{}, false, fmt.Errorf("read back spend record: %w", err)
	}
	return existing, false, nil
}

// DailySpend sums spend over the daily window containing asOf.
func (r *SpendRepo) DailySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error) {
	start, end := r.windows.DayWindow(asOf)
	return r.sum(ctx, walletID, currency, start, end)
}

// MonthlySpend sums spend over the monthly window containing asOf.
func (r *SpendRepo) MonthlySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error) {
	start, end := r.windows.MonthWindow(asOf)
	return r.sum(ctx, walletID, currency, start, end)
}

func (r *SpendRepo) sum(ctx context.Context, walletID uuid.UUID, currency string, start, end time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM spend_records
		WHERE wallet_id = $1 AND currency = $2 AND recorded_at >= $3 AND recorded_at < $4`

	var total int64
	err := r.pool.QueryRow(ctx, query, walletID, currency, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum spend records: %w", err)
	}
	return total, nil
}
