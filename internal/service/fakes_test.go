package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
)

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil && (ticket.RequesterID == nil || *ticket.RequesterID != *filter.RequesterID) {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages []domain.TicketMessage
}

func (r *memMessageRepo) Create(_ context.Context, message *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	message.ID = fmt.Sprintf("message-%d", r.seq)
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketMessage
	for _, message := range r.messages {
		if message.TicketID != ticketID {
			continue
		}
		if !includeInternal && message.Visibility != domain.VisibilityPublic {
			continue
		}
		out = append(out, message)
	}
	return out, nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id string) (*domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages {
		if message.ID == id {
			return &message, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memNoteRepo struct {
	mu    sync.Mutex
	seq   int
	notes []domain.InternalNote
}

func (r *memNoteRepo) Create(_ context.Context, note *domain.InternalNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	note.ID = fmt.Sprintf("note-%d", r.seq)
	r.notes = append(r.notes, *note)
	return nil
}

func (r *memNoteRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.InternalNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.InternalNote
	for _, note := range r.notes {
		if note.TicketID == ticketID {
			out = append(out, note)
		}
	}
	return out, nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	seq      int
	tutoring map[string]domain.TutoringRequest
	support  map[string]domain.SupportRequest
	failNext bool
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{
		tutoring: map[string]domain.TutoringRequest{},
		support:  map[string]domain.SupportRequest{},
	}
}

func (r *memRequestRepo) CreateTutoring(_ context.Context, request *domain.TutoringRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	request.ID = fmt.Sprintf("tutoring-%d", r.seq)
	r.tutoring[request.ID] = *request
	return nil
}

func (r *memRequestRepo) CreateSupport(_ context.Context, request *domain.SupportRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	request.ID = fmt.Sprintf("support-%d", r.seq)
	r.support[request.ID] = *request
	return nil
}

func (r *memRequestRepo) GetTutoring(_ context.Context, id string) (*domain.TutoringRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.tutoring[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r *memRequestRepo) GetSupport(_ context.Context, id string) (*domain.SupportRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.support[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r *memRequestRepo) UpdateTutoringStatus(_ context.Context, id string, status domain.TutoringRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return fmt.Errorf("simulated store failure")
	}
	request, ok := r.tutoring[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Status = status
	r.tutoring[id] = request
	return nil
}

func (r *memRequestRepo) UpdateSupportStatus(_ context.Context, id string, status domain.SupportRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return fmt.Errorf("simulated store failure")
	}
	request, ok := r.support[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Status = status
	r.support[id] = request
	return nil
}

type memRoleRepo struct {
	mu    sync.Mutex
	roles map[string]domain.UserRole
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{roles: map[string]domain.UserRole{}}
}

func (r *memRoleRepo) GetByUserID(_ context.Context, userID string) (*domain.UserRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &role, nil
}

func (r *memRoleRepo) GetSuperAdmin(_ context.Context) (*domain.UserRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.StaffLevel != nil && *role.StaffLevel == domain.StaffLevelSuperAdmin {
			out := role
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memRoleRepo) Upsert(_ context.Context, role *domain.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.UserID] = *role
	return nil
}

func (r *memRoleRepo) TransferSuperAdmin(_ context.Context, fromUserID, toUserID string, updatedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, ok := r.roles[fromUserID]
	if !ok || from.StaffLevel == nil || *from.StaffLevel != domain.StaffLevelSuperAdmin {
		return pgx.ErrNoRows
	}
	manager := domain.StaffLevelManager
	from.StaffLevel = &manager
	from.UpdatedBy = updatedBy
	r.roles[fromUserID] = from

	admin := domain.StaffLevelSuperAdmin
	r.roles[toUserID] = domain.UserRole{
		UserID:     toUserID,
		Role:       domain.RoleStaff,
		StaffLevel: &admin,
		UpdatedBy:  updatedBy,
	}
	return nil
}

func (r *memRoleRepo) List(_ context.Context, _, _ int) ([]domain.UserRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserRole
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memRoleRepo) setStaff(userID string, level domain.StaffLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = domain.UserRole{UserID: userID, Role: domain.RoleStaff, StaffLevel: &level}
}

type memEventRepo struct {
	mu     sync.Mutex
	seq    int
	events []domain.TicketEvent
}

func (r *memEventRepo) Append(_ context.Context, event *domain.TicketEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = fmt.Sprintf("event-%d", r.seq)
	r.events = append(r.events, *event)
	return nil
}

func (r *memEventRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketEvent
	for _, event := range r.events {
		if event.TicketID == ticketID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memEventRepo) actions() []domain.TicketAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TicketAction, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Action)
	}
	return out
}
