package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatus represents the lifecycle state of an agent wallet.
type WalletStatus string

const (
	WalletStatusActive  WalletStatus = "ACTIVE"
	WalletStatusPaused  WalletStatus = "PAUSED"
	WalletStatusFrozen  WalletStatus = "FROZEN"
	WalletStatusRevoked WalletStatus = "REVOKED"
)

// walletTransitions is the single source of truth for permitted status
// transitions. REVOKED has no outgoing edges.
var walletTransitions = map[WalletStatus][]WalletStatus{
	WalletStatusActive:  {WalletStatusPaused, WalletStatusFrozen, WalletStatusRevoked},
	WalletStatusPaused:  {WalletStatusActive, WalletStatusFrozen, WalletStatusRevoked},
	WalletStatusFrozen:  {WalletStatusActive, WalletStatusRevoked},
	WalletStatusRevoked: {},
}

// CanTransitionTo reports whether the transition s -> to is permitted.
func (s WalletStatus) CanTransitionTo(to WalletStatus) bool {
	for _, allowed := range walletTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequiresReason reports whether entering this status requires a stated reason.
func (s WalletStatus) RequiresReason() bool {
	return s == WalletStatusFrozen || s == WalletStatusRevoked
}

// IsValid reports whether s is a known wallet status.
func (s WalletStatus) IsValid() bool {
	_, ok := walletTransitions[s]
	return ok
}

// StatusChange is one entry in a wallet's status history.
type StatusChange struct {
	From   WalletStatus `json:"from"`
	To     WalletStatus `json:"to"`
	Reason string       `json:"reason,omitempty"`
	Actor  string       `json:"actor"`
	At     time.Time    `json:"at"`
}

// Wallet is an agent-controlled spending account with a lifecycle status
// and optional spend limits. Nil limits mean unlimited. All amounts are
// integer minor units.
type Wallet struct {
	ID                  uuid.UUID      `json:"id"`
	OwnerRef            string         `json:"owner_ref"` // agent identifier
	Status              WalletStatus   `json:"status"`
	StatusReason        string         `json:"status_reason,omitempty"`
	PerTransactionLimit *int64         `json:"per_transaction_limit,omitempty"`
	DailyLimit          *int64         `json:"daily_limit,omitempty"`
	MonthlyLimit        *int64         `json:"monthly_limit,omitempty"`
	Currency            string         `json:"currency"`
	FrozenUntil         *time.Time     `json:"frozen_until,omitempty"`
	StatusHistory       []StatusChange `json:"status_history,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// FreezeExpired reports whether a FROZEN wallet's freeze window has lapsed.
func (w *Wallet) FreezeExpired(now time.Time) bool {
	return w.Status == WalletStatusFrozen &&
		w.FrozenUntil != nil &&
		!now.Before(*w.FrozenUntil)
}

// IsActive reports whether the wallet may authorize payments right now.
// Callers should apply freeze-expiry reversion first; this only inspects
// the stored status.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}
