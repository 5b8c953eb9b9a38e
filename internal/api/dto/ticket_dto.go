package dto

import (
	"time"

	"github.com/brightpath/guidance-service/internal/domain"
)

// CreateTicketRequest payload for manual ticket creation.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Sensitive   bool                  `json:"sensitive"`
}

// TutoringRequestPayload payload.
type TutoringRequestPayload struct {
	Subject string `json:"subject"`
	Details string `json:"details"`
}

// SupportRequestPayload payload.
type SupportRequestPayload struct {
	Topic   string `json:"topic"`
	Details string `json:"details"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string      `json:"assigneeId"`
	Team       domain.Team `json:"team"`
	Note       string      `json:"note"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note"`
}

// AddMessageRequest payload.
type AddMessageRequest struct {
	Body       string                   `json:"body"`
	Visibility domain.MessageVisibility `json:"visibility"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Body string `json:"body"`
}

// CreateAttachmentRequest payload.
type CreateAttachmentRequest struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// LinkAttachmentRequest payload.
type LinkAttachmentRequest struct {
	MessageID string `json:"messageId"`
}

// TicketResponse response body.
type TicketResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     string                `json:"category,omitempty"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	SourceType   domain.TicketSource   `json:"sourceType"`
	SourceID     *string               `json:"sourceId,omitempty"`
	RequesterID  *string               `json:"requesterId,omitempty"`
	AssigneeID   *string               `json:"assigneeId,omitempty"`
	AssignedTeam *domain.Team          `json:"assignedTeam,omitempty"`
	ManagerNote  *string               `json:"managerNote,omitempty"`
	Sensitive    bool                  `json:"sensitive"`
	AssignedAt   *time.Time            `json:"assignedAt,omitempty"`
	ResolvedAt   *time.Time            `json:"resolvedAt,omitempty"`
	ClosedAt     *time.Time            `json:"closedAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps the domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Category:     t.Category,
		Priority:     t.Priority,
		Status:       t.Status,
		SourceType:   t.SourceType,
		SourceID:     t.SourceID,
		RequesterID:  t.RequesterID,
		AssigneeID:   t.AssigneeID,
		AssignedTeam: t.AssignedTeam,
		ManagerNote:  t.ManagerNote,
		Sensitive:    t.Sensitive,
		AssignedAt:   t.AssignedAt,
		ResolvedAt:   t.ResolvedAt,
		ClosedAt:     t.ClosedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// MessageResponse response body.
type MessageResponse struct {
	ID          string                   `json:"id"`
	TicketID    string                   `json:"ticketId"`
	AuthorID    string                   `json:"authorId"`
	AuthorStaff bool                     `json:"authorStaff"`
	Visibility  domain.MessageVisibility `json:"visibility"`
	Body        string                   `json:"body"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// NewMessageResponse maps the domain message.
func NewMessageResponse(m *domain.TicketMessage) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		TicketID:    m.TicketID,
		AuthorID:    m.AuthorID,
		AuthorStaff: m.AuthorStaff,
		Visibility:  m.Visibility,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
}

// NoteResponse response body.
type NoteResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventResponse response body for the audit trail.
type EventResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticketId"`
	ActorID     string               `json:"actorId"`
	Action      domain.TicketAction  `json:"action"`
	OldStatus   *domain.TicketStatus `json:"oldStatus,omitempty"`
	NewStatus   *domain.TicketStatus `json:"newStatus,omitempty"`
	OldAssignee *string              `json:"oldAssignee,omitempty"`
	NewAssignee *string              `json:"newAssignee,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// AttachmentResponse response body.
type AttachmentResponse struct {
	ID              string    `json:"id"`
	TicketID        string    `json:"ticketId"`
	UploaderID      string    `json:"uploaderId"`
	LinkedMessageID *string   `json:"linkedMessageId,omitempty"`
	FileName        string    `json:"fileName"`
	MimeType        string    `json:"mimeType,omitempty"`
	SizeBytes       int64     `json:"sizeBytes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewAttachmentResponse maps the domain attachment.
func NewAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:              a.ID,
		TicketID:        a.TicketID,
		UploaderID:      a.UploaderID,
		LinkedMessageID: a.LinkedMessageID,
		FileName:        a.FileName,
		MimeType:        a.MimeType,
		SizeBytes:       a.SizeBytes,
		CreatedAt:       a.CreatedAt,
	}
}
