package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/events"
	"github.com/brightpath/guidance-service/internal/observability"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

type ticketFixture struct {
	service  *TicketService
	tickets  *memTicketRepo
	messages *memMessageRepo
	requests *memRequestRepo
	roles    *memRoleRepo
	trail    *memEventRepo
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newMemTicketRepo()
	messages := &memMessageRepo{}
	notes := &memNoteRepo{}
	requests := newMemRequestRepo()
	roles := newMemRoleRepo()
	trail := &memEventRepo{}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		NoteRepo:    notes,
		RequestRepo: requests,
		RoleRepo:    roles,
		Audit:       NewAuditService(trail, logger, metrics),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
		Metrics:     metrics,
	})
	return &ticketFixture{service: svc, tickets: tickets, messages: messages, requests: requests, roles: roles, trail: trail}
}

func staffViewer(userID string, level domain.StaffLevel) *accesscontrol.Viewer {
	return &accesscontrol.Viewer{
		UserID:      userID,
		Role:        domain.RoleStaff,
		StaffLevel:  &level,
		MFAVerified: true,
	}
}

func studentViewer(userID string) *accesscontrol.Viewer {
	return &accesscontrol.Viewer{UserID: userID, Role: domain.RoleStudent}
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestCreateManualTicketDefaultsPriority(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Broken login"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("priority = %s, want medium", ticket.Priority)
	}
	if ticket.Status != domain.TicketStatusNew {
		t.Fatalf("status = %s, want new", ticket.Status)
	}

	actions := f.trail.actions()
	if len(actions) != 1 || actions[0] != domain.ActionTicketCreated {
		t.Fatalf("audit trail = %v, want [ticket_created]", actions)
	}
}

func TestCreateManualTicketRejectsInvalidPriority(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	_, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{
		Title:    "Broken login",
		Priority: "critical",
	})
	if got := statusCode(t, err); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestCreateManualTicketRequiresManager(t *testing.T) {
	f := newTicketFixture(t)
	tutor := staffViewer("tutor-1", domain.StaffLevelTutor)

	_, err := f.service.CreateManualTicket(context.Background(), tutor, CreateTicketInput{Title: "x"})
	if got := statusCode(t, err); got != 403 {
		t.Fatalf("status = %d, want 403", got)
	}
}

func TestAssignTicketTeamMismatchLeavesTicketUnchanged(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)
	f.roles.setStaff("support-1", domain.StaffLevelSupport)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Course question"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.service.AssignTicket(context.Background(), manager, ticket.ID, AssignTicketInput{
		AssigneeID: "support-1",
		Team:       domain.TeamTutor,
	})
	if got := statusCode(t, err); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.AssigneeID != nil {
		t.Fatalf("assignee = %v, want nil after rejected assign", *stored.AssigneeID)
	}
	if stored.Status != domain.TicketStatusNew {
		t.Fatalf("status = %s, want new after rejected assign", stored.Status)
	}
}

func TestAssignTicketRejectsInvalidTeam(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	_, err := f.service.AssignTicket(context.Background(), manager, "ticket-1", AssignTicketInput{
		AssigneeID: "tutor-1",
		Team:       "billing",
	})
	if got := statusCode(t, err); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestAssignTicketAdvancesNewOnly(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)
	f.roles.setStaff("tutor-1", domain.StaffLevelTutor)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Algebra help"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assigned, err := f.service.AssignTicket(context.Background(), manager, ticket.ID, AssignTicketInput{
		AssigneeID: "tutor-1",
		Team:       domain.TeamTutor,
		Note:       "take this one",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.TicketStatusAssigned {
		t.Fatalf("status = %s, want assigned", assigned.Status)
	}
	if assigned.AssignedAt == nil {
		t.Fatal("assigned_at not stamped")
	}

	// moving further along then reassigning must not regress the status
	if _, err := f.service.ChangeStatus(context.Background(), manager, ticket.ID, domain.TicketStatusInProgress, ""); err != nil {
		t.Fatalf("status change: %v", err)
	}
	f.roles.setStaff("tutor-2", domain.StaffLevelTutor)
	reassigned, err := f.service.AssignTicket(context.Background(), manager, ticket.ID, AssignTicketInput{
		AssigneeID: "tutor-2",
		Team:       domain.TeamTutor,
	})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if reassigned.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s, want in_progress preserved", reassigned.Status)
	}
}

func TestChangeStatusStampsTimestamps(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Transcript request"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := f.service.ChangeStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved, "done")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt == nil {
		t.Fatal("resolved_at not stamped")
	}
	if resolved.ClosedAt != nil {
		t.Fatal("closed_at stamped early")
	}

	closed, err := f.service.ChangeStatus(context.Background(), manager, ticket.ID, domain.TicketStatusClosed, "")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ClosedAt == nil {
		t.Fatal("closed_at not stamped")
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	_, err := f.service.ChangeStatus(context.Background(), manager, "ticket-1", "escalated", "")
	if got := statusCode(t, err); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestChangeStatusNonAssigneeStaffCannotSee(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)
	f.roles.setStaff("tutor-1", domain.StaffLevelTutor)
	f.roles.setStaff("tutor-2", domain.StaffLevelTutor)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Essay review"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.AssignTicket(context.Background(), manager, ticket.ID, AssignTicketInput{
		AssigneeID: "tutor-1",
		Team:       domain.TeamTutor,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// the other tutor cannot even see it
	other := staffViewer("tutor-2", domain.StaffLevelTutor)
	_, err = f.service.ChangeStatus(context.Background(), other, ticket.ID, domain.TicketStatusInProgress, "")
	if got := statusCode(t, err); got != 404 {
		t.Fatalf("status = %d, want 404 for non-assignee tutor", got)
	}

	assignee := staffViewer("tutor-1", domain.StaffLevelTutor)
	if _, err := f.service.ChangeStatus(context.Background(), assignee, ticket.ID, domain.TicketStatusInProgress, ""); err != nil {
		t.Fatalf("assignee status change: %v", err)
	}
}

func TestStatusPropagationToTutoringRequest(t *testing.T) {
	f := newTicketFixture(t)
	student := studentViewer("student-1")
	manager := staffViewer("manager-1", domain.StaffLevelManager)
	f.roles.setStaff("tutor-1", domain.StaffLevelTutor)

	request, ticket, err := f.service.OpenTutoringRequest(context.Background(), student, "Calculus", "limits and series")
	if err != nil {
		t.Fatalf("open request: %v", err)
	}
	if ticket.SourceType != domain.TicketSourceTutoringRequest {
		t.Fatalf("source = %s, want tutoring_request", ticket.SourceType)
	}

	if _, err := f.service.AssignTicket(context.Background(), manager, ticket.ID, AssignTicketInput{
		AssigneeID: "tutor-1",
		Team:       domain.TeamTutor,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	stored, _ := f.requests.GetTutoring(context.Background(), request.ID)
	if stored.Status != domain.TutoringRequestAssigned {
		t.Fatalf("request status = %s, want assigned", stored.Status)
	}

	if _, err := f.service.ChangeStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved, ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, _ = f.requests.GetTutoring(context.Background(), request.ID)
	if stored.Status != domain.TutoringRequestCompleted {
		t.Fatalf("request status = %s, want completed", stored.Status)
	}
}

func TestStatusPropagationFailureDoesNotFailChange(t *testing.T) {
	f := newTicketFixture(t)
	student := studentViewer("student-1")
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	_, ticket, err := f.service.OpenSupportRequest(context.Background(), student, "Billing", "charged twice")
	if err != nil {
		t.Fatalf("open request: %v", err)
	}

	f.requests.failNext = true
	updated, err := f.service.ChangeStatus(context.Background(), manager, ticket.ID, domain.TicketStatusResolved, "")
	if err != nil {
		t.Fatalf("status change surfaced propagation error: %v", err)
	}
	if updated.Status != domain.TicketStatusResolved {
		t.Fatalf("status = %s, want resolved", updated.Status)
	}
}

func TestAddMessageDowngradesInternalForNonStaff(t *testing.T) {
	f := newTicketFixture(t)
	student := studentViewer("student-1")

	_, ticket, err := f.service.OpenSupportRequest(context.Background(), student, "Login", "cannot sign in")
	if err != nil {
		t.Fatalf("open request: %v", err)
	}

	message, err := f.service.AddMessage(context.Background(), student, ticket.ID, "any update?", domain.VisibilityInternal)
	if err != nil {
		t.Fatalf("add message: %v", err)
	}
	if message.Visibility != domain.VisibilityPublic {
		t.Fatalf("visibility = %s, want public after downgrade", message.Visibility)
	}
	if message.AuthorStaff {
		t.Fatal("author flagged as staff")
	}
}

func TestListMessagesHidesInternalFromStudents(t *testing.T) {
	f := newTicketFixture(t)
	student := studentViewer("student-1")
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	_, ticket, err := f.service.OpenSupportRequest(context.Background(), student, "Refund", "need a refund")
	if err != nil {
		t.Fatalf("open request: %v", err)
	}
	if _, err := f.service.AddMessage(context.Background(), manager, ticket.ID, "internal context", domain.VisibilityInternal); err != nil {
		t.Fatalf("staff message: %v", err)
	}
	if _, err := f.service.AddMessage(context.Background(), manager, ticket.ID, "we are on it", domain.VisibilityPublic); err != nil {
		t.Fatalf("staff message: %v", err)
	}

	visible, err := f.service.ListMessages(context.Background(), student, ticket.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].Visibility != domain.VisibilityPublic {
		t.Fatalf("student sees %d messages, want 1 public", len(visible))
	}

	all, err := f.service.ListMessages(context.Background(), manager, ticket.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("staff sees %d messages, want 2", len(all))
	}
}

func TestSensitiveTicketAccessIsAudited(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)

	ticket, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{
		Title:     "Conduct report",
		Sensitive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.ListMessages(context.Background(), manager, ticket.ID); err != nil {
		t.Fatalf("list: %v", err)
	}

	found := false
	for _, action := range f.trail.actions() {
		if action == domain.ActionSensitiveTicketAccessed {
			found = true
		}
	}
	if !found {
		t.Fatal("sensitive_ticket_accessed event missing from trail")
	}
}

func TestGetTicketHidesOtherStudentsTickets(t *testing.T) {
	f := newTicketFixture(t)
	owner := studentViewer("student-1")
	other := studentViewer("student-2")

	_, ticket, err := f.service.OpenSupportRequest(context.Background(), owner, "Topic", "details")
	if err != nil {
		t.Fatalf("open request: %v", err)
	}

	if _, err := f.service.GetTicket(context.Background(), owner, ticket.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	_, err = f.service.GetTicket(context.Background(), other, ticket.ID)
	if got := statusCode(t, err); got != 404 {
		t.Fatalf("status = %d, want 404 for other student", got)
	}
}

func TestListTicketsForStaffScopesNonManagers(t *testing.T) {
	f := newTicketFixture(t)
	manager := staffViewer("manager-1", domain.StaffLevelManager)
	f.roles.setStaff("tutor-1", domain.StaffLevelTutor)

	first, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "One"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.CreateManualTicket(context.Background(), manager, CreateTicketInput{Title: "Two"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.AssignTicket(context.Background(), manager, first.ID, AssignTicketInput{
		AssigneeID: "tutor-1",
		Team:       domain.TeamTutor,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	tutorList, err := f.service.ListTicketsForStaff(context.Background(), staffViewer("tutor-1", domain.StaffLevelTutor), TicketListFilter{})
	if err != nil {
		t.Fatalf("tutor list: %v", err)
	}
	if len(tutorList) != 1 || tutorList[0].ID != first.ID {
		t.Fatalf("tutor sees %d tickets, want only the assigned one", len(tutorList))
	}

	managerList, err := f.service.ListTicketsForStaff(context.Background(), manager, TicketListFilter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(managerList) != 2 {
		t.Fatalf("manager sees %d tickets, want 2", len(managerList))
	}
}

func TestListEventsRequiresManager(t *testing.T) {
	f := newTicketFixture(t)
	tutor := staffViewer("tutor-1", domain.StaffLevelTutor)

	_, err := f.service.ListEvents(context.Background(), tutor, "ticket-1")
	if got := statusCode(t, err); got != 403 {
		t.Fatalf("status = %d, want 403", got)
	}
}
