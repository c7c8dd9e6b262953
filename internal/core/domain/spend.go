package domain

import (
	"time"

	"github.com/google/uuid"
)

// SpendRecord is one append-only ledger entry for an approved spend.
// Records are never mutated or deleted; insertion is idempotent by RequestID.
type SpendRecord struct {
	WalletID   uuid.UUID `json:"wallet_id"`
	Amount     int64     `json:"amount"` // minor units
	Currency   string    `json:"currency"`
	RequestID  string    `json:"request_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
