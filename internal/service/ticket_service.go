package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/events"
	"github.com/brightpath/guidance-service/internal/observability"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// TicketService is the workflow engine over ticket status, assignment
// and the ticket's child entities.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	notes      repository.NoteRepository
	requests   repository.RequestRepository
	roles      repository.RoleRepository
	audit      *AuditService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	NoteRepo    repository.NoteRepository
	RequestRepo repository.RequestRepository
	RoleRepo    repository.RoleRepository
	Audit       *AuditService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		notes:      deps.NoteRepo,
		requests:   deps.RequestRepo,
		roles:      deps.RoleRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// CreateTicketInput describes manual ticket creation.
type CreateTicketInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
	Sensitive   bool
}

// AssignTicketInput describes an assignment.
type AssignTicketInput struct {
	AssigneeID string
	Team       domain.Team
	Note       string
}

// TicketListFilter narrows staff listing.
type TicketListFilter struct {
	Statuses []domain.TicketStatus
	Team     *domain.Team
	Limit    int
	Offset   int
}

// CreateManualTicket creates a backoffice ticket. Manual creation is
// restricted to ticket managers.
func (s *TicketService) CreateManualTicket(ctx context.Context, viewer *accesscontrol.Viewer, input CreateTicketInput) (*domain.Ticket, error) {
	if !accesscontrol.CanManageTickets(viewer.StaffLevel) {
		return nil, apperrors.NewForbidden("ticket management privileges required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    priority,
		Status:      domain.TicketStatusNew,
		SourceType:  domain.TicketSourceManual,
		Sensitive:   input.Sensitive,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	newStatus := ticket.Status
	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   viewer.UserID,
		Action:    domain.ActionTicketCreated,
		NewStatus: &newStatus,
	})
	s.publish(ctx, events.Event{
		Action:   string(domain.ActionTicketCreated),
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Source:   ticket.SourceType,
		},
	})
	return ticket, nil
}

// OpenTutoringRequest records a student's tutoring request and spawns
// its linked ticket routed to the tutor team.
func (s *TicketService) OpenTutoringRequest(ctx context.Context, viewer *accesscontrol.Viewer, subject, details string) (*domain.TutoringRequest, *domain.Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, nil, apperrors.NewValidationError("subject is required", nil)
	}

	request := &domain.TutoringRequest{
		StudentID: viewer.UserID,
		Subject:   subject,
		Details:   strings.TrimSpace(details),
		Status:    domain.TutoringRequestNew,
	}
	if err := s.requests.CreateTutoring(ctx, request); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	team := domain.TeamTutor
	ticket, err := s.createSourcedTicket(ctx, viewer, "Tutoring: "+subject, request.Details,
		domain.TicketSourceTutoringRequest, request.ID, team)
	if err != nil {
		return nil, nil, err
	}
	return request, ticket, nil
}

// OpenSupportRequest records a student's support request and spawns its
// linked ticket routed to the support team.
func (s *TicketService) OpenSupportRequest(ctx context.Context, viewer *accesscontrol.Viewer, topic, details string) (*domain.SupportRequest, *domain.Ticket, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, nil, apperrors.NewValidationError("topic is required", nil)
	}

	request := &domain.SupportRequest{
		StudentID: viewer.UserID,
		Topic:     topic,
		Details:   strings.TrimSpace(details),
		Status:    domain.SupportRequestNew,
	}
	if err := s.requests.CreateSupport(ctx, request); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	team := domain.TeamSupport
	ticket, err := s.createSourcedTicket(ctx, viewer, "Support: "+topic, request.Details,
		domain.TicketSourceSupportRequest, request.ID, team)
	if err != nil {
		return nil, nil, err
	}
	return request, ticket, nil
}

func (s *TicketService) createSourcedTicket(ctx context.Context, viewer *accesscontrol.Viewer, title, description string, source domain.TicketSource, sourceID string, team domain.Team) (*domain.Ticket, error) {
	requesterID := viewer.UserID
	ticket := &domain.Ticket{
		Title:        title,
		Description:  description,
		Priority:     domain.TicketPriorityMedium,
		Status:       domain.TicketStatusNew,
		SourceType:   source,
		SourceID:     &sourceID,
		RequesterID:  &requesterID,
		AssignedTeam: &team,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	newStatus := ticket.Status
	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   viewer.UserID,
		Action:    domain.ActionTicketCreated,
		NewStatus: &newStatus,
	})
	s.publish(ctx, events.Event{
		Action:   string(domain.ActionTicketCreated),
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Source:   ticket.SourceType,
		},
	})
	return ticket, nil
}

// ListTicketsForStaff returns every ticket for managers, and only the
// caller's assigned tickets otherwise.
func (s *TicketService) ListTicketsForStaff(ctx context.Context, viewer *accesscontrol.Viewer, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses: filter.Statuses,
		Team:     filter.Team,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	if !accesscontrol.CanViewAllTickets(viewer.StaffLevel) {
		assignee := viewer.UserID
		repoFilter.AssigneeID = &assignee
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTicketsForRequester returns the caller's own tickets.
func (s *TicketService) ListTicketsForRequester(ctx context.Context, viewer *accesscontrol.Viewer, limit, offset int) ([]domain.Ticket, error) {
	requester := viewer.UserID
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		RequesterID: &requester,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket loads a ticket the viewer may see. Rows outside the viewer's
// reach surface as 404 so existence is not leaked.
func (s *TicketService) GetTicket(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !s.canViewTicket(viewer, ticket) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// AssignTicket routes a ticket to a staff member. The target must hold
// the staff level matching the requested team; a mismatch is rejected
// before any mutation.
func (s *TicketService) AssignTicket(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string, input AssignTicketInput) (*domain.Ticket, error) {
	if !accesscontrol.CanManageTickets(viewer.StaffLevel) {
		return nil, apperrors.NewForbidden("ticket management privileges required")
	}
	if !domain.ValidTeam(input.Team) {
		return nil, apperrors.NewValidationError("invalid team", map[string]any{"team": input.Team})
	}
	if input.AssigneeID == "" {
		return nil, apperrors.NewValidationError("assigneeId is required", nil)
	}

	assigneeLevel, err := s.staffLevelOf(ctx, input.AssigneeID)
	if err != nil {
		return nil, err
	}
	if assigneeLevel == nil || domain.StaffLevel(input.Team) != *assigneeLevel {
		return nil, apperrors.NewValidationError("assignee staff level does not match requested team",
			map[string]any{"team": input.Team})
	}

	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}

	oldAssignee := ticket.AssigneeID
	oldStatus := ticket.Status

	now := time.Now()
	assigner := viewer.UserID
	ticket.AssigneeID = &input.AssigneeID
	ticket.AssignedBy = &assigner
	ticket.AssignedTeam = &input.Team
	ticket.AssignedAt = &now
	if note := strings.TrimSpace(input.Note); note != "" {
		ticket.ManagerNote = &note
	}
	// only a fresh ticket advances; anything further along keeps its status
	if ticket.Status == domain.TicketStatusNew {
		ticket.Status = domain.TicketStatusAssigned
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	newStatus := ticket.Status
	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID:    ticket.ID,
		ActorID:     viewer.UserID,
		Action:      domain.ActionTicketAssigned,
		OldStatus:   &oldStatus,
		NewStatus:   &newStatus,
		OldAssignee: oldAssignee,
		NewAssignee: ticket.AssigneeID,
	})
	s.publish(ctx, events.Event{
		Action:   string(domain.ActionTicketAssigned),
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Payload: events.TicketAssignedPayload{
			OldAssignee: oldAssignee,
			NewAssignee: input.AssigneeID,
			Team:        input.Team,
		},
	})

	s.propagateStatus(ctx, ticket)
	return ticket, nil
}

// ChangeStatus moves a ticket through its state machine. Staff may move
// tickets assigned to them; managers may move any ticket.
func (s *TicketService) ChangeStatus(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string, newStatus domain.TicketStatus, note string) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}

	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.isAssignee(viewer, ticket) && !accesscontrol.CanManageTickets(viewer.StaffLevel) {
		return nil, apperrors.NewForbidden("only the assignee or a manager may change this ticket")
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	now := time.Now()
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	metadata := map[string]any{}
	if note = strings.TrimSpace(note); note != "" {
		metadata["note"] = note
	}
	changedTo := ticket.Status
	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID:    ticket.ID,
		ActorID:     viewer.UserID,
		Action:      domain.ActionStatusChanged,
		OldStatus:   &oldStatus,
		NewStatus:   &changedTo,
		OldAssignee: ticket.AssigneeID,
		NewAssignee: ticket.AssigneeID,
		Metadata:    metadata,
	})
	s.publish(ctx, events.Event{
		Action:   string(domain.ActionStatusChanged),
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Note:      note,
		},
	})

	s.propagateStatus(ctx, ticket)
	return ticket, nil
}

// ListMessages returns the thread visible to the viewer. Reading a
// sensitive ticket's thread as staff leaves a trace in the audit trail.
func (s *TicketService) ListMessages(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string) ([]domain.TicketMessage, error) {
	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.Sensitive && viewer.IsStaff() {
		s.audit.Record(ctx, &domain.TicketEvent{
			TicketID: ticket.ID,
			ActorID:  viewer.UserID,
			Action:   domain.ActionSensitiveTicketAccessed,
		})
	}

	messages, err := s.messages.ListByTicket(ctx, ticket.ID, viewer.IsStaff())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return messages, nil
}

// AddMessage posts to the thread. Only staff may post internal messages;
// a non-staff internal request is stored public rather than rejected.
func (s *TicketService) AddMessage(ctx context.Context, viewer *accesscontrol.Viewer, ticketID, body string, visibility domain.MessageVisibility) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	if visibility != domain.VisibilityPublic && visibility != domain.VisibilityInternal {
		return nil, apperrors.NewValidationError("invalid visibility", map[string]any{"visibility": visibility})
	}
	if visibility == domain.VisibilityInternal && !viewer.IsStaff() {
		visibility = domain.VisibilityPublic
	}

	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}

	message := &domain.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    viewer.UserID,
		AuthorStaff: viewer.IsStaff(),
		Visibility:  visibility,
		Body:        body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperrors.MapError(err)
	}

	action := domain.ActionMessageAdded
	if visibility == domain.VisibilityInternal {
		action = domain.ActionInternalMessageAdded
	}
	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Action:   action,
		Metadata: map[string]any{"message_id": message.ID},
	})
	s.publish(ctx, events.Event{
		Action:   string(action),
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Payload: events.MessageAddedPayload{
			MessageID:  message.ID,
			Visibility: message.Visibility,
		},
	})
	return message, nil
}

// AddNote writes a staff-only internal note.
func (s *TicketService) AddNote(ctx context.Context, viewer *accesscontrol.Viewer, ticketID, body string) (*domain.InternalNote, error) {
	if !viewer.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}

	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}

	note := &domain.InternalNote{
		TicketID: ticket.ID,
		AuthorID: viewer.UserID,
		Body:     body,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(ctx, &domain.TicketEvent{
		TicketID: ticket.ID,
		ActorID:  viewer.UserID,
		Action:   domain.ActionInternalNoteAdded,
		Metadata: map[string]any{"note_id": note.ID},
	})
	return note, nil
}

// ListNotes returns internal notes for staff viewers.
func (s *TicketService) ListNotes(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string) ([]domain.InternalNote, error) {
	if !viewer.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notes, nil
}

// ListEvents returns the audit trail; managers only.
func (s *TicketService) ListEvents(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string) ([]domain.TicketEvent, error) {
	if !accesscontrol.CanManageTickets(viewer.StaffLevel) {
		return nil, apperrors.NewForbidden("ticket management privileges required")
	}
	if _, err := s.GetTicket(ctx, viewer, ticketID); err != nil {
		return nil, err
	}
	trail, err := s.audit.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return trail, nil
}

// propagateStatus mirrors the ticket status onto its originating request
// record. Best effort: a propagation failure is logged and counted but
// never fails the primary response.
func (s *TicketService) propagateStatus(ctx context.Context, ticket *domain.Ticket) {
	if ticket.SourceID == nil {
		return
	}

	var err error
	switch ticket.SourceType {
	case domain.TicketSourceTutoringRequest:
		err = s.requests.UpdateTutoringStatus(ctx, *ticket.SourceID, domain.TutoringStatusFor(ticket.Status))
	case domain.TicketSourceSupportRequest:
		err = s.requests.UpdateSupportStatus(ctx, *ticket.SourceID, domain.SupportStatusFor(ticket.Status))
	default:
		return
	}
	if err != nil {
		s.metrics.RecordSideEffectFailure("status_propagation")
		s.logger.Error("status propagation to source record failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("source_type", string(ticket.SourceType)),
			zap.String("source_id", *ticket.SourceID),
			zap.Error(err))
	}
}

func (s *TicketService) canViewTicket(viewer *accesscontrol.Viewer, ticket *domain.Ticket) bool {
	if viewer.IsStaff() {
		if accesscontrol.CanViewAllTickets(viewer.StaffLevel) {
			return true
		}
		return s.isAssignee(viewer, ticket)
	}
	return ticket.RequesterID != nil && *ticket.RequesterID == viewer.UserID
}

func (s *TicketService) isAssignee(viewer *accesscontrol.Viewer, ticket *domain.Ticket) bool {
	return ticket.AssigneeID != nil && *ticket.AssigneeID == viewer.UserID
}

// staffLevelOf resolves the target's staff level from the role table,
// normalizing legacy values the same way the resolver does.
func (s *TicketService) staffLevelOf(ctx context.Context, userID string) (*domain.StaffLevel, error) {
	row, err := s.roles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	rawLevel := ""
	if row.StaffLevel != nil {
		rawLevel = string(*row.StaffLevel)
	}
	_, level := domain.NormalizeRole(string(row.Role), rawLevel)
	return level, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}
