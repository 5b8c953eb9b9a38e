package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

type fakeLLM struct {
	reply      string
	embedErr   error
	shortBatch bool
}

func (l *fakeLLM) Complete(_ context.Context, _ []ChatMessage) (string, error) {
	return l.reply, nil
}

func (l *fakeLLM) Embed(_ context.Context, _ string) ([]float32, error) {
	if l.embedErr != nil {
		return nil, l.embedErr
	}
	return []float32{0.1, 0.2}, nil
}

func (l *fakeLLM) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if l.embedErr != nil {
		return nil, l.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	if l.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

type fakeDocumentStore struct {
	seq       int
	documents map[string]domain.Document
	chunks    map[string][]string
	matches   []domain.CourseMatch
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		documents: map[string]domain.Document{},
		chunks:    map[string][]string{},
	}
}

func (s *fakeDocumentStore) CreateDocument(_ context.Context, document *domain.Document) error {
	s.seq++
	document.ID = fmt.Sprintf("document-%d", s.seq)
	s.documents[document.ID] = *document
	return nil
}

func (s *fakeDocumentStore) UpdateDocumentStatus(_ context.Context, id string, status domain.DocumentStatus, chunkCount int) error {
	document, ok := s.documents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	document.Status = status
	document.ChunkCount = chunkCount
	s.documents[id] = document
	return nil
}

func (s *fakeDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	document, ok := s.documents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &document, nil
}

func (s *fakeDocumentStore) InsertChunk(_ context.Context, documentID string, _ int, content string, _ []float32) error {
	s.chunks[documentID] = append(s.chunks[documentID], content)
	return nil
}

func (s *fakeDocumentStore) SearchCourses(_ context.Context, _ []float32, _ int) ([]domain.CourseMatch, error) {
	return s.matches, nil
}

func httpStatus(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestChatWithoutLLMNotConfigured(t *testing.T) {
	svc := NewService(nil, newFakeDocumentStore(), zap.NewNop())

	_, err := svc.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	if httpStatus(err) != 501 {
		t.Fatalf("want 501, got %v", err)
	}
}

func TestChatRequiresMessages(t *testing.T) {
	svc := NewService(&fakeLLM{reply: "hello"}, newFakeDocumentStore(), zap.NewNop())

	_, err := svc.Chat(context.Background(), nil)
	if httpStatus(err) != 400 {
		t.Fatalf("want 400, got %v", err)
	}
}

func TestChatReturnsReply(t *testing.T) {
	svc := NewService(&fakeLLM{reply: "take AP calculus"}, newFakeDocumentStore(), zap.NewNop())

	reply, err := svc.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "which math course?"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "take AP calculus" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestSearchCoursesUsesEmbedding(t *testing.T) {
	store := newFakeDocumentStore()
	store.matches = []domain.CourseMatch{{Course: domain.Course{ID: "c1", Code: "MATH101"}, Similarity: 0.93}}
	svc := NewService(&fakeLLM{}, store, zap.NewNop())

	matches, err := svc.SearchCourses(context.Background(), "intro calculus", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Course.Code != "MATH101" {
		t.Fatalf("matches = %v", matches)
	}
}

func TestIngestDocumentEmptyContentUnprocessable(t *testing.T) {
	svc := NewService(&fakeLLM{}, newFakeDocumentStore(), zap.NewNop())

	_, err := svc.IngestDocument(context.Background(), "owner-1", "Essay", "   ")
	if httpStatus(err) != 422 {
		t.Fatalf("want 422, got %v", err)
	}
}

func TestIngestDocumentEmbeddingFailureMarksFailed(t *testing.T) {
	store := newFakeDocumentStore()
	svc := NewService(&fakeLLM{embedErr: errors.New("quota exceeded")}, store, zap.NewNop())

	document, err := svc.IngestDocument(context.Background(), "owner-1", "Essay", "my essay text")
	if err != nil {
		t.Fatalf("ingest surfaced embedding error: %v", err)
	}
	if document.Status != domain.DocumentStatusFailed {
		t.Fatalf("status = %s, want failed", document.Status)
	}
	stored := store.documents[document.ID]
	if stored.Status != domain.DocumentStatusFailed {
		t.Fatalf("stored status = %s, want failed", stored.Status)
	}
}

func TestIngestDocumentChunksAndMarksReady(t *testing.T) {
	store := newFakeDocumentStore()
	svc := NewService(&fakeLLM{}, store, zap.NewNop())

	content := strings.Repeat("course planning notes ", 300)
	document, err := svc.IngestDocument(context.Background(), "owner-1", "Notes", content)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if document.Status != domain.DocumentStatusReady {
		t.Fatalf("status = %s, want ready", document.Status)
	}
	if document.ChunkCount < 2 {
		t.Fatalf("chunk count = %d, want multiple chunks", document.ChunkCount)
	}
	if len(store.chunks[document.ID]) != document.ChunkCount {
		t.Fatalf("stored chunks = %d, want %d", len(store.chunks[document.ID]), document.ChunkCount)
	}
}

func TestIngestDocumentShortEmbeddingReplyMarksFailed(t *testing.T) {
	store := newFakeDocumentStore()
	svc := NewService(&fakeLLM{shortBatch: true}, store, zap.NewNop())

	content := strings.Repeat("course planning notes ", 300)
	document, err := svc.IngestDocument(context.Background(), "owner-1", "Notes", content)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if document.Status != domain.DocumentStatusFailed {
		t.Fatalf("status = %s, want failed", document.Status)
	}
	if store.documents[document.ID].Status != domain.DocumentStatusFailed {
		t.Fatalf("stored status = %s, want failed", store.documents[document.ID].Status)
	}
}

func TestSplitChunksRespectsBoundaries(t *testing.T) {
	chunks := splitChunks("alpha beta gamma delta", 11)
	for _, chunk := range chunks {
		if len(chunk) > 11 {
			t.Fatalf("chunk %q exceeds limit", chunk)
		}
	}
	if strings.Join(chunks, " ") != "alpha beta gamma delta" {
		t.Fatalf("content lost: %v", chunks)
	}

	single := splitChunks("short", 100)
	if len(single) != 1 || single[0] != "short" {
		t.Fatalf("short content split: %v", single)
	}
}

func TestSplitChunksKeepsMultibyteRunesIntact(t *testing.T) {
	content := strings.Repeat("世界", 800)
	chunks := splitChunks(content, 1000)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
		if len(chunk) > 1000 {
			t.Fatalf("chunk %d exceeds limit", i)
		}
	}
	if strings.Join(chunks, "") != content {
		t.Fatalf("content lost across chunks")
	}
}
