package domain

import "time"

// TicketAction captures what a ticket event records.
type TicketAction string

const (
	ActionTicketCreated           TicketAction = "ticket_created"
	ActionTicketAssigned          TicketAction = "ticket_assigned"
	ActionStatusChanged           TicketAction = "status_changed"
	ActionMessageAdded            TicketAction = "message_added"
	ActionInternalMessageAdded    TicketAction = "internal_message_added"
	ActionInternalNoteAdded       TicketAction = "internal_note_added"
	ActionSensitiveTicketAccessed TicketAction = "sensitive_ticket_accessed"
)

// TicketEvent is an immutable audit trail entry. Rows are appended on
// every mutating workflow action and never updated or deleted.
type TicketEvent struct {
	ID          string
	TicketID    string
	ActorID     string
	Action      TicketAction
	OldStatus   *TicketStatus
	NewStatus   *TicketStatus
	OldAssignee *string
	NewAssignee *string
	Metadata    map[string]any
	CreatedAt   time.Time
}
