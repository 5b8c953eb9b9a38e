package advisor

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

const systemPrompt = "You are a college guidance advisor. Answer questions about course selection, " +
	"applications and academic planning. Be concise and practical."

// chunkSize bounds how much text goes into one embedding call.
const chunkSize = 2000

// Service provides advisor chat and course-intelligence operations.
type Service struct {
	llm       LLMClient
	documents repository.DocumentRepository
	logger    *zap.Logger
}

// NewService constructs the advisor service. A nil llm means the feature
// is not configured and every operation returns 501.
func NewService(llm LLMClient, documents repository.DocumentRepository, logger *zap.Logger) *Service {
	return &Service{llm: llm, documents: documents, logger: logger}
}

// Chat runs one advisor conversation turn.
func (s *Service) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if s.llm == nil {
		return "", apperrors.NewNotConfigured("advisor")
	}
	if len(messages) == 0 {
		return "", apperrors.NewValidationError("messages are required", nil)
	}

	prompt := append([]ChatMessage{{Role: "user", Content: systemPrompt}}, messages...)
	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return reply, nil
}

// SearchCourses embeds the query and returns the nearest catalog entries.
func (s *Service) SearchCourses(ctx context.Context, query string, limit int) ([]domain.CourseMatch, error) {
	if s.llm == nil {
		return nil, apperrors.NewNotConfigured("advisor")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query is required", nil)
	}

	embedding, err := s.llm.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	matches, err := s.documents.SearchCourses(ctx, embedding, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return matches, nil
}

// IngestDocument chunks and embeds submitted text. Runs within the
// request's duration budget; an embedding failure leaves the document in
// the terminal failed state and the student retries by re-submitting.
func (s *Service) IngestDocument(ctx context.Context, ownerID, title, content string) (*domain.Document, error) {
	if s.llm == nil {
		return nil, apperrors.NewNotConfigured("advisor")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewUnprocessable("document has no readable text", nil)
	}

	document := &domain.Document{
		OwnerID: ownerID,
		Title:   title,
		Status:  domain.DocumentStatusPending,
	}
	if err := s.documents.CreateDocument(ctx, document); err != nil {
		return nil, apperrors.MapError(err)
	}

	chunks := splitChunks(content, chunkSize)
	embeddings, err := s.llm.EmbedBatch(ctx, chunks)
	if err != nil {
		s.markFailed(ctx, document.ID)
		document.Status = domain.DocumentStatusFailed
		return document, nil
	}
	if len(embeddings) != len(chunks) {
		s.logger.Warn("embedding count mismatch",
			zap.String("document_id", document.ID),
			zap.Int("chunks", len(chunks)), zap.Int("embeddings", len(embeddings)))
		s.markFailed(ctx, document.ID)
		document.Status = domain.DocumentStatusFailed
		return document, nil
	}

	for i, chunk := range chunks {
		if err := s.documents.InsertChunk(ctx, document.ID, i, chunk, embeddings[i]); err != nil {
			s.markFailed(ctx, document.ID)
			document.Status = domain.DocumentStatusFailed
			return document, nil
		}
	}

	if err := s.documents.UpdateDocumentStatus(ctx, document.ID, domain.DocumentStatusReady, len(chunks)); err != nil {
		return nil, apperrors.MapError(err)
	}
	document.Status = domain.DocumentStatusReady
	document.ChunkCount = len(chunks)
	return document, nil
}

func (s *Service) markFailed(ctx context.Context, documentID string) {
	if err := s.documents.UpdateDocumentStatus(ctx, documentID, domain.DocumentStatusFailed, 0); err != nil {
		s.logger.Warn("failed to mark document failed",
			zap.String("document_id", documentID), zap.Error(err))
	}
}

func splitChunks(content string, size int) []string {
	if size <= 0 || len(content) <= size {
		return []string{content}
	}
	var chunks []string
	for len(content) > size {
		cut := size
		// prefer a whitespace boundary near the limit
		if idx := strings.LastIndexByte(content[:size], ' '); idx > size/2 {
			cut = idx
		} else {
			// never cut inside a multi-byte rune
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			if cut == 0 {
				cut = size
			}
		}
		chunks = append(chunks, strings.TrimSpace(content[:cut]))
		content = strings.TrimSpace(content[cut:])
	}
	if content != "" {
		chunks = append(chunks, content)
	}
	return chunks
}
