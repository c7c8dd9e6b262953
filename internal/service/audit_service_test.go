package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func auditEntry() *domain.AuditLog {
	walletID := uuid.New()
	return &domain.AuditLog{
		ID:           uuid.New(),
		WalletID:     &walletID,
		Action:       domain.AuditActionDecision,
		ResourceType: "payment_request",
		ResourceID:   "REQ-1",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAuditService_Log_PersistsEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)

	entry := auditEntry()
	repo.EXPECT().Create(gomock.Any(), entry).Return(nil)

	svc := NewAuditService(repo, zerolog.Nop())
	svc.Log(context.Background(), entry)
}

func TestAuditService_Log_SinkFailureDoesNotPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)

	entry := auditEntry()
	repo.EXPECT().Create(gomock.Any(), entry).Return(errors.New("table missing"))

	svc := NewAuditService(repo, zerolog.Nop())
	assert.NotPanics(t, func() { svc.Log(context.Background(), entry) })
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())
	assert.NotPanics(t, func() { svc.Log(context.Background(), auditEntry()) })
}
