package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredWallet(t *testing.T) *domain.Wallet {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:                  uuid.New(),
		OwnerRef:            "agent-7",
		Status:              domain.WalletStatusActive,
		PerTransactionLimit: domain.Int64Ptr(5000),
		DailyLimit:          domain.Int64Ptr(10000),
		Currency:            "USD",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func walletRow(t *testing.T, w *domain.Wallet) *pgxmock.Rows {
	t.Helper()
	history, err := json.Marshal(w.StatusHistory)
	require.NoError(t, err)
	return pgxmock.NewRows([]string{
		"id", "owner_ref", "status", "status_reason",
		"per_transaction_limit", "daily_limit", "monthly_limit",
		"currency", "frozen_until", "status_history", "created_at", "updated_at",
	}).AddRow(
		w.ID, w.OwnerRef, string(w.Status), w.StatusReason,
		w.PerTransactionLimit, w.DailyLimit, w.MonthlyLimit,
		w.Currency, w.FrozenUntil, history, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newStoredWallet(t)
	history, err := json.Marshal(w.StatusHistory)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(
			w.ID, w.OwnerRef, string(w.Status), w.StatusReason,
			w.PerTransactionLimit, w.DailyLimit, w.MonthlyLimit,
			w.Currency, w.FrozenUntil, history, w.CreatedAt, w.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), w))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newStoredWallet(t)
	w.StatusHistory = []domain.StatusChange{{
		From:  domain.WalletStatusActive,
		To:    domain.WalletStatusPaused,
		Actor: "owner",
		At:    w.UpdatedAt,
	}}
	w.Status = domain.WalletStatusPaused

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id").
		WithArgs(w.ID).
		WillReturnRows(walletRow(t, w))

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, domain.WalletStatusPaused, got.Status)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, "owner", got.StatusHistory[0].Actor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newStoredWallet(t)
	w.Status = domain.WalletStatusFrozen
	w.StatusReason = "risk hold"
	history, err := json.Marshal(w.StatusHistory)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE wallets").
		WithArgs(
			string(w.Status), w.StatusReason, w.FrozenUntil, history, w.UpdatedAt,
			w.ID, string(domain.WalletStatusActive),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdateStatus(context.Background(), w, domain.WalletStatusActive)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateStatus_StaleCAS(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newStoredWallet(t)
	w.Status = domain.WalletStatusPaused
	history, err := json.Marshal(w.StatusHistory)
	require.NoError(t, err)

	// Zero rows affected: the stored status no longer matches prev.
	mock.ExpectExec("UPDATE wallets").
		WithArgs(
			string(w.Status), w.StatusReason, w.FrozenUntil, history, w.UpdatedAt,
			w.ID, string(domain.WalletStatusActive),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateStatus(context.Background(), w, domain.WalletStatusActive)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
