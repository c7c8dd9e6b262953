package service

import (
	"context"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// PolicyService implements ports.PolicyEvaluator. Checks run in a fixed
// order: per-transaction limit first (an O(1) comparison), then the daily
// and monthly aggregates, so doomed requests fail before any ledger scan
// they don't need. Unset limits are unlimited.
type PolicyService struct {
	ledger ports.SpendLedger
	log    zerolog.Logger
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(ledger ports.SpendLedger, log zerolog.Logger) *PolicyService {
	return &PolicyService{ledger: ledger, log: log}
}

// Evaluate applies the spend-policy checks for one prospective amount.
// The returned decision carries budget snapshots: the violated window on
// rejection, remaining budgets on approval. The caller fills RequestID.
func (s *PolicyService) Evaluate(ctx context.Context, wallet *domain.Wallet, amount int64, currency string, asOf time.Time) (*domain.PolicyDecision, error) {
	d := &domain.PolicyDecision{
		WalletID:    wallet.ID,
		Outcome:     domain.OutcomeApproved,
		EvaluatedAt: asOf.UTC(),
	}

	// 1. Per-transaction limit
	if lim := wallet.PerTransactionLimit; lim != nil && amount > *lim {
		d.Outcome = domain.OutcomeRejected
		d.ReasonCode = domain.ReasonTransactionLimit
		d.Detail = fmt.Sprintf("amount %d exceeds per-transaction limit %d", amount, *lim)
		d.Details.Limit = lim
		return d, nil
	}

	// 2. Daily budget
	var dailySpent int64
	if lim := wallet.DailyLimit; lim != nil {
		var err error
		dailySpent, err = s.ledger.DailySpend(ctx, wallet.ID, currency, asOf)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("daily spend aggregate: %w", err))
		}
		if dailySpent+amount > *lim {
			d.Outcome = domain.OutcomeRejected
			d.ReasonCode = domain.ReasonDailyBudget
			d.Detail = fmt.Sprintf("current_spend=%d, limit=%d, remaining=%d", dailySpent, *lim, *lim-dailySpent)
			d.Details.CurrentSpend = domain.Int64Ptr(dailySpent)
			d.Details.Limit = lim
			d.Details.Remaining = domain.Int64Ptr(*lim - dailySpent)
			return d, nil
		}
	}

	// 3. Monthly budget
	var monthlySpent int64
	if lim := wallet.MonthlyLimit; lim != nil {
		var err error
		monthlySpent, err = s.ledger.MonthlySpend(ctx, wallet.ID, currency, asOf)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("monthly spend aggregate: %w", err))
		}
		if monthlySpent+amount > *lim {
			d.Outcome = domain.OutcomeRejected
			d.ReasonCode = domain.ReasonMonthlyBudget
			d.Detail = fmt.Sprintf("current_spend=%d, limit=%d, remaining=%d", monthlySpent, *lim, *lim-monthlySpent)
			d.Details.CurrentSpend = domain.Int64Ptr(monthlySpent)
			d.Details.Limit = lim
			d.Details.Remaining = domain.Int64Ptr(*lim - monthlySpent)
			return d, nil
		}
	}

	// Approved: snapshot remaining budgets assuming this amount commits.
	if lim := wallet.DailyLimit; lim != nil {
		d.Details.DailyRemaining = domain.Int64Ptr(*lim - dailySpent - amount)
	}
	if lim := wallet.MonthlyLimit; lim != nil {
		d.Details.MonthlyRemaining = domain.Int64Ptr(*lim - monthlySpent - amount)
	}
	return d, nil
}
