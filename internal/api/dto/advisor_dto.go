package dto

import (
	"time"

	"github.com/brightpath/guidance-service/internal/advisor"
	"github.com/brightpath/guidance-service/internal/domain"
)

// ChatRequest payload.
type ChatRequest struct {
	Messages []advisor.ChatMessage `json:"messages"`
}

// ChatResponse response body.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// CourseSearchRequest payload.
type CourseSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// CourseMatchResponse response body.
type CourseMatchResponse struct {
	CourseID   string  `json:"courseId"`
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// IngestDocumentRequest payload.
type IngestDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocumentResponse response body.
type DocumentResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Status    domain.DocumentStatus `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
}
