package handler

import (
	"time"

	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment authorization endpoints.
type PaymentHandler struct {
	authSvc ports.AuthorizationService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(authSvc ports.AuthorizationService) *PaymentHandler {
	return &PaymentHandler{authSvc: authSvc}
}

// Authorize handles POST /api/v1/payments/authorize.
func (h *PaymentHandler) Authorize(c *gin.Context) {
	var req dto.AuthorizePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		response.Error(c, apperror.Validation("wallet_id must be a UUID"))
		return
	}

	decision, err := h.authSvc.Authorize(c.Request.Context(), domain.PaymentRequest{
		RequestID: req.RequestID,
		WalletID:  walletID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Nonce:     req.Nonce,
		Timestamp: req.Timestamp,
		Signature: req.Signature,
		SignerDID: req.SignerDID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if decision.Approved() {
		response.OK(c, toDecisionResponse(decision))
		return
	}

	appErr := rejectionError(decision)
	c.JSON(appErr.HTTPStatus, dto.RejectionResponse{
		ErrorCode: appErr.Code,
		Detail:    decision.Detail,
		RequestID: decision.RequestID,
		WalletID:  decision.WalletID.String(),
		Details:   toDetailsDTO(decision.Details),
		Timestamp: decision.EvaluatedAt.Format(time.RFC3339),
	})
}

// rejectionError maps a rejected decision to the transport error
// carrying its error code and HTTP status.
func rejectionError(d *domain.PolicyDecision) *apperror.AppError {
	switch d.ReasonCode {
	case domain.ReasonWalletNotFound:
		return apperror.ErrWalletNotFound()
	case domain.ReasonWalletNotActive:
		return apperror.ErrWalletNotActive(d.Details.WalletStatus, d.Details.StatusReason)
	case domain.ReasonTransactionLimit:
		return apperror.ErrTransactionLimitExceeded()
	case domain.ReasonDailyBudget:
		return apperror.ErrDailyBudgetExceeded()
	case domain.ReasonMonthlyBudget:
		return apperror.ErrMonthlyBudgetExceeded()
	case domain.ReasonInvalidSignature:
		return apperror.ErrInvalidSignature()
	case domain.ReasonReplayDetected:
		return apperror.ErrReplayDetected()
	case domain.ReasonSignatureExpired:
		return apperror.ErrSignatureExpired()
	case domain.ReasonVerificationUnavailable:
		return apperror.ErrVerificationUnavailable(nil)
	default:
		return apperror.InternalError(nil)
	}
}

func toDecisionResponse(d *domain.PolicyDecision) dto.DecisionResponse {
	return dto.DecisionResponse{
		RequestID:   d.RequestID,
		WalletID:    d.WalletID.String(),
		Outcome:     string(d.Outcome),
		EvaluatedAt: d.EvaluatedAt.Format(time.RFC3339),
		Details:     toDetailsDTO(d.Details),
	}
}

func toDetailsDTO(d domain.DecisionDetails) dto.DecisionDetails {
	return dto.DecisionDetails{
		CurrentSpend:     d.CurrentSpend,
		Limit:            d.Limit,
		Remaining:        d.Remaining,
		DailyRemaining:   d.DailyRemaining,
		MonthlyRemaining: d.MonthlyRemaining,
		WalletStatus:     d.WalletStatus,
		StatusReason:     d.StatusReason,
	}
}
