package domain

import "time"

// MessageVisibility controls who can read a thread message.
type MessageVisibility string

const (
	VisibilityPublic   MessageVisibility = "public"
	VisibilityInternal MessageVisibility = "internal"
)

// TicketMessage is a thread entry on a ticket. Internal-visibility
// messages are staff-only.
type TicketMessage struct {
	ID          string
	TicketID    string
	AuthorID    string
	AuthorStaff bool
	Visibility  MessageVisibility
	Body        string
	CreatedAt   time.Time
}

// InternalNote is staff-only commentary kept apart from the message thread.
type InternalNote struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Attachment stores file metadata for a ticket. The row exists before the
// signed upload URL is issued; LinkedMessageID is set later by the uploader.
type Attachment struct {
	ID              string
	TicketID        string
	UploaderID      string
	LinkedMessageID *string
	StoragePath     string
	FileName        string
	MimeType        string
	SizeBytes       int64
	CreatedAt       time.Time
}
