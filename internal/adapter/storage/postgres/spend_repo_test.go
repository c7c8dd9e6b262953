package postgres

import (
	"context"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpendRecord() domain.SpendRecord {
	return domain.SpendRecord{
		WalletID:   uuid.New(),
		Amount:     1500,
		Currency:   "USD",
		RequestID:  "REQ-1",
		RecordedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestSpendRepo_RecordSpend_Inserted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSpendRepo(mock, domain.CalendarUTCWindows{})
	rec := newSpendRecord()

	mock.ExpectExec("INSERT INTO spend_records").
		WithArgs(rec.WalletID, rec.Amount, rec.Currency, rec.RequestID, rec.RecordedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, inserted, err := repo.RecordSpend(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, rec, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendRepo_RecordSpend_DuplicateReadsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSpendRepo(mock, domain.CalendarUTCWindows{})
	rec := newSpendRecord()

	existing := rec
	existing.Amount = 1200 // the first delivery's amount wins

	mock.ExpectExec("INSERT INTO spend_records").
		WithArgs(rec.WalletID, rec.Amount, rec.Currency, rec.RequestID, rec.RecordedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM spend_records WHERE request_id").
		WithArgs(rec.RequestID).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_id", "amount", "currency", "request_id", "recorded_at"}).
			AddRow(existing.WalletID, existing.Amount, existing.Currency, existing.RequestID, existing.RecordedAt))

	got, inserted, err := repo.RecordSpend(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, int64(1200), got.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendRepo_DailySpend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	windows := domain.CalendarUTCWindows{}
	repo := NewSpendRepo(mock, windows)
	walletID := uuid.New()
	asOf := time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)
	start, end := windows.DayWindow(asOf)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM spend_records`).
		WithArgs(walletID, "USD", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(4200)))

	total, err := repo.DailySpend(context.Background(), walletID, "USD", asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendRepo_MonthlySpend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	windows := domain.CalendarUTCWindows{}
	repo := NewSpendRepo(mock, windows)
	walletID := uuid.New()
	asOf := time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)
	start, end := windows.MonthWindow(asOf)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM spend_records`).
		WithArgs(walletID, "USD", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

	total, err := repo.MonthlySpend(context.Background(), walletID, "USD", asOf)
	require.NoError(t, err)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
