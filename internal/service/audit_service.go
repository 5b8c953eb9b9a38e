package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/observability"
	"github.com/brightpath/guidance-service/internal/repository"
)

// AuditService appends the immutable event trail. Append failures are
// swallowed and logged so a mutating action never fails on its audit
// side effect; the metric keeps the swallow observable.
type AuditService struct {
	events  repository.TicketEventRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuditService constructs the service.
func NewAuditService(events repository.TicketEventRepository, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{events: events, logger: logger, metrics: metrics}
}

// Record appends an audit event.
func (s *AuditService) Record(ctx context.Context, event *domain.TicketEvent) {
	if err := s.events.Append(ctx, event); err != nil {
		s.metrics.RecordSideEffectFailure("audit_append")
		s.logger.Error("audit append failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("action", string(event.Action)),
			zap.Error(err))
	}
}

// ListByTicket returns the trail for a ticket.
func (s *AuditService) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	return s.events.ListByTicket(ctx, ticketID)
}
