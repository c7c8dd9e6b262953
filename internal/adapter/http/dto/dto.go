package dto

// AuthorizePaymentRequest is the request body for payment authorization.
// Amount is in integer minor units; Timestamp is Unix seconds; Signature
// is the hex-encoded ed25519 signature over the canonical payload.
type AuthorizePaymentRequest struct {
	RequestID string `json:"request_id" binding:"required,max=100,safe_id"`
	WalletID  string `json:"wallet_id" binding:"required,uuid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"required,len=3"`
	Nonce     string `json:"nonce" binding:"required,max=128,safe_id"`
	Timestamp int64  `json:"timestamp" binding:"required,gt=0"`
	Signature string `json:"signature" binding:"required,max=256"`
	SignerDID string `json:"signer_did" binding:"required,max=256"`
}

// DecisionDetails mirrors the budget snapshot carried by a decision.
type DecisionDetails struct {
	CurrentSpend     *int64 `json:"current_spend,omitempty"`
	Limit            *int64 `json:"limit,omitempty"`
	Remaining        *int64 `json:"remaining,omitempty"`
	DailyRemaining   *int64 `json:"daily_remaining,omitempty"`
	MonthlyRemaining *int64 `json:"monthly_remaining,omitempty"`
	WalletStatus     string `json:"wallet_status,omitempty"`
	StatusReason     string `json:"status_reason,omitempty"`
}

// DecisionResponse is the response body for an approved authorization.
type DecisionResponse struct {
	RequestID   string          `json:"request_id"`
	WalletID    string          `json:"wallet_id"`
	Outcome     string          `json:"outcome"`
	EvaluatedAt string          `json:"evaluated_at"`
	Details     DecisionDetails `json:"details"`
}

// RejectionResponse is the uniform rejection payload: error code, detail
// and the decision's budget/status snapshot.
type RejectionResponse struct {
	ErrorCode string          `json:"error_code"`
	Detail    string          `json:"detail"`
	RequestID string          `json:"request_id"`
	WalletID  string          `json:"wallet_id"`
	Details   DecisionDetails `json:"details"`
	Timestamp string          `json:"timestamp"`
}

// CreateWalletRequest is the request body for wallet provisioning.
// Limits are optional; absent means unlimited.
type CreateWalletRequest struct {
	OwnerRef            string `json:"owner_ref" binding:"required,max=256"`
	Currency            string `json:"currency" binding:"required,len=3"`
	PerTransactionLimit *int64 `json:"per_transaction_limit,omitempty" binding:"omitempty,gt=0"`
	DailyLimit          *int64 `json:"daily_limit,omitempty" binding:"omitempty,gt=0"`
	MonthlyLimit        *int64 `json:"monthly_limit,omitempty" binding:"omitempty,gt=0"`
}

// TransitionWalletRequest is the request body for a status transition.
// EffectiveUntil (RFC3339) bounds a freeze; it is ignored for other statuses.
type TransitionWalletRequest struct {
	Status         string  `json:"status" binding:"required,oneof=ACTIVE PAUSED FROZEN REVOKED"`
	Reason         string  `json:"reason,omitempty" binding:"max=512"`
	EffectiveUntil *string `json:"effective_until,omitempty"`
}

// StatusChangeResponse is one entry of a wallet's status history.
type StatusChangeResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor"`
	At     string `json:"at"`
}

// WalletResponse is the response body for wallet reads and transitions.
type WalletResponse struct {
	ID                  string                 `json:"id"`
	OwnerRef            string                 `json:"owner_ref"`
	Status              string                 `json:"status"`
	StatusReason        string                 `json:"status_reason,omitempty"`
	PerTransactionLimit *int64                 `json:"per_transaction_limit,omitempty"`
	DailyLimit          *int64                 `json:"daily_limit,omitempty"`
	MonthlyLimit        *int64                 `json:"monthly_limit,omitempty"`
	Currency            string                 `json:"currency"`
	FrozenUntil         *string                `json:"frozen_until,omitempty"`
	StatusHistory       []StatusChangeResponse `json:"status_history,omitempty"`
	CreatedAt           string                 `json:"created_at"`
	UpdatedAt           string                 `json:"updated_at"`
}
