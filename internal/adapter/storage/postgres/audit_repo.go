package postgres

import (
	"context"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, wallet_id, action, resource_type, resource_id, actor, details, created_at)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.WalletID, string(log.Action), log.ResourceType,
		log.ResourceID, log.Actor, log.Details, log.CreatedAt,
	)
	return err
}
