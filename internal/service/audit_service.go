package service

import (
	"context"

	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit entries are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Log records an audit entry. The write is synchronous so a decision is
// never returned before its non-repudiation record exists; a sink failure
// is logged but does not fail the caller.
func (s *auditService) Log(ctx context.Context, entry *domain.AuditLog) {
	s.log.Info().
		Str("action", string(entry.Action)).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("actor", entry.Actor).
		Msg("audit")

	if s.repo != nil {
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
		}
	}
}
