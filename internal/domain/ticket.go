package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew              TicketStatus = "new"
	TicketStatusAssigned         TicketStatus = "assigned"
	TicketStatusInProgress       TicketStatus = "in_progress"
	TicketStatusWaitingOnStudent TicketStatus = "waiting_on_student"
	TicketStatusResolved         TicketStatus = "resolved"
	TicketStatusClosed           TicketStatus = "closed"
)

// ValidTicketStatus reports whether the value is one of the six states.
func ValidTicketStatus(status TicketStatus) bool {
	switch status {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusWaitingOnStudent, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(priority TicketPriority) bool {
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketSource identifies where a ticket originated.
type TicketSource string

const (
	TicketSourceManual          TicketSource = "manual"
	TicketSourceTutoringRequest TicketSource = "tutoring_request"
	TicketSourceSupportRequest  TicketSource = "support_request"
)

// Ticket is the unit of staff work for a support or tutoring issue.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Priority     TicketPriority
	Status       TicketStatus
	SourceType   TicketSource
	SourceID     *string
	RequesterID  *string
	AssigneeID   *string
	AssignedBy   *string
	AssignedTeam *Team
	ManagerNote  *string
	Sensitive    bool
	AssignedAt   *time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
