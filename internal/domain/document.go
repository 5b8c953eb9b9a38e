package domain

import "time"

// DocumentStatus tracks ingest progress for course-intelligence documents.
// Failed is terminal; retry is user-initiated by re-submitting.
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusReady   DocumentStatus = "ready"
	DocumentStatusFailed  DocumentStatus = "failed"
)

// Document is an ingested text source for course intelligence.
type Document struct {
	ID         string
	OwnerID    string
	Title      string
	Status     DocumentStatus
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Course is a searchable catalog entry with an embedding vector.
type Course struct {
	ID          string
	Code        string
	Title       string
	Description string
}

// CourseMatch is a similarity search hit.
type CourseMatch struct {
	Course     Course
	Similarity float64
}
