// Package memory provides in-process implementations of the storage ports.
// They back single-node deployments and the integration test fabric.
package memory

import (
	"context"
	"sync"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// Ledger is an append-only, mutex-guarded spend ledger. Records are keyed
// by request ID for idempotent insertion and indexed per wallet for
// window aggregation.
type Ledger struct {
	mu        sync.RWMutex
	byRequest map[string]domain.SpendRecord
	byWallet  map[uuid.UUID][]domain.SpendRecord
	windows   domain.WindowPolicy
}

// NewLedger creates an empty ledger using the given window policy.
func NewLedger(windows domain.WindowPolicy) *Ledger {
	return &Ledger{
		byRequest: make(map[string]domain.SpendRecord),
		byWallet:  make(map[uuid.UUID][]domain.SpendRecord),
		windows:   windows,
	}
}

// RecordSpend appends a spend record. A duplicate request ID returns the
// existing record unchanged.
func (l *Ledger) RecordSpend(ctx context.Context, rec domain.SpendRecord) (domain.SpendRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byRequest[rec.RequestID]; ok {
		return existing, false, nil
	}
	rec.RecordedAt = rec.RecordedAt.UTC()
	l.byRequest[rec.RequestID] = rec
	l.byWallet[rec.WalletID] = append(l.byWallet[rec.WalletID], rec)
	return rec, true, nil
}

// DailySpend sums spend over the daily window containing asOf.
func (l *Ledger) DailySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error) {
	start, end := l.windows.DayWindow(asOf)
	return l.sum(walletID, currency, start, end), nil
}

// MonthlySpend sums spend over the monthly window containing asOf.
func (l *Ledger) MonthlySpend(ctx context.Context, walletID uuid.UUID, currency string, asOf time.Time) (int64, error) {
	start, end := l.windows.MonthWindow(asOf)
	return l.sum(walletID, currency, start, end), nil
}

func (l *Ledger) sum(walletID uuid.UUID, currency string, start, end time.Time) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, rec := range l.byWallet[walletID] {
		if rec.Currency != currency {
			continue
		}
		if rec.RecordedAt.Before(start) || !rec.RecordedAt.Before(end) {
			continue
		}
		total += rec.Amount
	}
	return total
}
