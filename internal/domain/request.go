package domain

import "time"

// TutoringRequestStatus tracks a tutoring request record.
type TutoringRequestStatus string

const (
	TutoringRequestNew        TutoringRequestStatus = "new"
	TutoringRequestAssigned   TutoringRequestStatus = "assigned"
	TutoringRequestInProgress TutoringRequestStatus = "in_progress"
	TutoringRequestCompleted  TutoringRequestStatus = "completed"
)

// SupportRequestStatus tracks a support request record.
type SupportRequestStatus string

const (
	SupportRequestNew        SupportRequestStatus = "new"
	SupportRequestInProgress SupportRequestStatus = "in_progress"
	SupportRequestResolved   SupportRequestStatus = "resolved"
	SupportRequestClosed     SupportRequestStatus = "closed"
)

// TutoringRequest is a student's request for tutoring help. Each request
// spawns a linked backoffice ticket which drives its status from then on.
type TutoringRequest struct {
	ID        string
	StudentID string
	Subject   string
	Details   string
	Status    TutoringRequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SupportRequest is a student's support inquiry.
type SupportRequest struct {
	ID        string
	StudentID string
	Topic     string
	Details   string
	Status    SupportRequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TutoringStatusFor maps a ticket status onto the originating tutoring
// request's status.
func TutoringStatusFor(status TicketStatus) TutoringRequestStatus {
	switch status {
	case TicketStatusAssigned:
		return TutoringRequestAssigned
	case TicketStatusInProgress, TicketStatusWaitingOnStudent:
		return TutoringRequestInProgress
	case TicketStatusResolved, TicketStatusClosed:
		return TutoringRequestCompleted
	}
	return TutoringRequestNew
}

// SupportStatusFor maps a ticket status onto the originating support
// request's status.
func SupportStatusFor(status TicketStatus) SupportRequestStatus {
	switch status {
	case TicketStatusAssigned, TicketStatusInProgress, TicketStatusWaitingOnStudent:
		return SupportRequestInProgress
	case TicketStatusResolved:
		return SupportRequestResolved
	case TicketStatusClosed:
		return SupportRequestClosed
	}
	return SupportRequestNew
}
