package events

import (
	"time"

	"github.com/brightpath/guidance-service/internal/domain"
)

// Event represents a workflow event emitted by services. Action values
// match the audit trail's domain.TicketAction strings.
type Event struct {
	ID        string      `json:"id"`
	Action    string      `json:"action"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Source   domain.TicketSource   `json:"source"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee *string     `json:"old_assignee,omitempty"`
	NewAssignee string      `json:"new_assignee"`
	Team        domain.Team `json:"team"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID  string                   `json:"message_id"`
	Visibility domain.MessageVisibility `json:"visibility"`
}
