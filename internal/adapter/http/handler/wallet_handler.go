package handler

import (
	"time"

	"agent-payment-gateway/internal/adapter/http/dto"
	"agent-payment-gateway/internal/adapter/http/middleware"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/pkg/apperror"
	"agent-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles administrative wallet endpoints.
type WalletHandler struct {
	registry ports.WalletRegistry
	repo     ports.WalletRepository
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(registry ports.WalletRegistry, repo ports.WalletRepository) *WalletHandler {
	return &WalletHandler{registry: registry, repo: repo}
}

// Create handles POST /api/v1/wallets. Wallets are provisioned by the
// external custody collaborator; they start ACTIVE.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:                  uuid.New(),
		OwnerRef:            req.OwnerRef,
		Status:              domain.WalletStatusActive,
		PerTransactionLimit: req.PerTransactionLimit,
		DailyLimit:          req.DailyLimit,
		MonthlyLimit:        req.MonthlyLimit,
		Currency:            req.Currency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.Created(c, toWalletResponse(w))
}

// Get handles GET /api/v1/wallets/:id.
func (h *WalletHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("wallet id must be a UUID"))
		return
	}

	w, err := h.registry.GetWallet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(w))
}

// Transition handles POST /api/v1/wallets/:id/transition.
func (h *WalletHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("wallet id must be a UUID"))
		return
	}

	var req dto.TransitionWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var effectiveUntil *time.Time
	if req.EffectiveUntil != nil {
		t, err := time.Parse(time.RFC3339, *req.EffectiveUntil)
		if err != nil {
			response.Error(c, apperror.Validation("effective_until must be RFC3339"))
			return
		}
		effectiveUntil = &t
	}

	actor := "admin"
	if sub, ok := c.Get(middleware.CtxAdminSubject); ok {
		if s, ok := sub.(string); ok && s != "" {
			actor = s
		}
	}

	w, err := h.registry.Transition(c.Request.Context(), ports.TransitionRequest{
		WalletID:       id,
		NewStatus:      domain.WalletStatus(req.Status),
		Reason:         req.Reason,
		Actor:          actor,
		EffectiveUntil: effectiveUntil,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(w))
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	resp := dto.WalletResponse{
		ID:                  w.ID.String(),
		OwnerRef:            w.OwnerRef,
		Status:              string(w.Status),
		StatusReason:        w.StatusReason,
		PerTransactionLimit: w.PerTransactionLimit,
		DailyLimit:          w.DailyLimit,
		MonthlyLimit:        w.MonthlyLimit,
		Currency:            w.Currency,
		CreatedAt:           w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           w.UpdatedAt.Format(time.RFC3339),
	}
	if w.FrozenUntil != nil {
		s := w.FrozenUntil.Format(time.RFC3339)
		resp.FrozenUntil = &s
	}
	for _, ch := range w.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, dto.StatusChangeResponse{
			From:   string(ch.From),
			To:     string(ch.To),
			Reason: ch.Reason,
			Actor:  ch.Actor,
			At:     ch.At.Format(time.RFC3339),
		})
	}
	return resp
}
