package domain

import (
	"time"

	"github.com/google/uuid"
)

// DecisionOutcome is the terminal result of evaluating a payment request.
type DecisionOutcome string

const (
	OutcomeApproved DecisionOutcome = "APPROVED"
	OutcomeRejected DecisionOutcome = "REJECTED"
)

// ReasonCode identifies why a request was rejected.
type ReasonCode string

const (
	ReasonWalletNotFound          ReasonCode = "WALLET_NOT_FOUND"
	ReasonWalletNotActive         ReasonCode = "WALLET_NOT_ACTIVE"
	ReasonTransactionLimit        ReasonCode = "TRANSACTION_LIMIT_EXCEEDED"
	ReasonDailyBudget             ReasonCode = "DAILY_BUDGET_EXCEEDED"
	ReasonMonthlyBudget           ReasonCode = "MONTHLY_BUDGET_EXCEEDED"
	ReasonInvalidSignature        ReasonCode = "INVALID_SIGNATURE"
	ReasonReplayDetected          ReasonCode = "REPLAY_DETECTED"
	ReasonSignatureExpired        ReasonCode = "SIGNATURE_EXPIRED"
	ReasonVerificationUnavailable ReasonCode = "SIGNATURE_VERIFICATION_UNAVAILABLE"
)

// DecisionDetails carries the budget snapshot attached to a decision.
// On budget rejections CurrentSpend/Limit/Remaining describe the violated
// window; on approvals the remaining daily/monthly budgets are reported.
type DecisionDetails struct {
	CurrentSpend     *int64 `json:"current_spend,omitempty"`
	Limit            *int64 `json:"limit,omitempty"`
	Remaining        *int64 `json:"remaining,omitempty"`
	DailyRemaining   *int64 `json:"daily_remaining,omitempty"`
	MonthlyRemaining *int64 `json:"monthly_remaining,omitempty"`
	WalletStatus     string `json:"wallet_status,omitempty"`
	StatusReason     string `json:"status_reason,omitempty"`
}

// PolicyDecision is the audited outcome of evaluating one payment request.
// One decision is emitted for every request regardless of outcome.
type PolicyDecision struct {
	RequestID   string          `json:"request_id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Outcome     DecisionOutcome `json:"outcome"`
	ReasonCode  ReasonCode      `json:"reason_code,omitempty"`
	Detail      string          `json:"detail,omitempty"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
	Details     DecisionDetails `json:"details"`
}

// Approved reports whether the decision authorizes the spend.
func (d *PolicyDecision) Approved() bool {
	return d.Outcome == OutcomeApproved
}

// Int64Ptr returns a pointer to v. Helper for optional amount fields.
func Int64Ptr(v int64) *int64 {
	return &v
}
