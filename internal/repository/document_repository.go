package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// DocumentRepository persists ingested documents, their chunk embeddings
// and the course catalog used for similarity search.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, document *domain.Document) error
	UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus, chunkCount int) error
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	InsertChunk(ctx context.Context, documentID string, position int, content string, embedding []float32) error
	SearchCourses(ctx context.Context, embedding []float32, limit int) ([]domain.CourseMatch, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates the repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) CreateDocument(ctx context.Context, document *domain.Document) error {
	const query = `
        INSERT INTO documents (owner_id, title, status, chunk_count)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		document.OwnerID,
		document.Title,
		document.Status,
		document.ChunkCount,
	).Scan(&document.ID, &document.CreatedAt, &document.UpdatedAt)
}

func (r *documentRepository) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus, chunkCount int) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE documents SET status=$1, chunk_count=$2, updated_at=NOW() WHERE id=$3`,
		status, chunkCount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepository) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	const query = `
        SELECT id, owner_id, title, status, chunk_count, created_at, updated_at
        FROM documents WHERE id=$1`
	var document domain.Document
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.OwnerID,
		&document.Title,
		&document.Status,
		&document.ChunkCount,
		&document.CreatedAt,
		&document.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) InsertChunk(ctx context.Context, documentID string, position int, content string, embedding []float32) error {
	const query = `
        INSERT INTO document_chunks (document_id, position, content, embedding)
        VALUES ($1,$2,$3,$4::vector)`
	_, err := r.pool.Exec(ctx, query, documentID, position, content, vectorLiteral(embedding))
	return err
}

func (r *documentRepository) SearchCourses(ctx context.Context, embedding []float32, limit int) ([]domain.CourseMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT id, code, title, description, 1 - (embedding <=> $1::vector) AS similarity
        FROM courses WHERE embedding IS NOT NULL
        ORDER BY embedding <=> $1::vector
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, vectorLiteral(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CourseMatch
	for rows.Next() {
		var match domain.CourseMatch
		if err := rows.Scan(
			&match.Course.ID,
			&match.Course.Code,
			&match.Course.Title,
			&match.Course.Description,
			&match.Similarity,
		); err != nil {
			return nil, err
		}
		result = append(result, match)
	}
	return result, rows.Err()
}

// vectorLiteral renders a pgvector input literal.
func vectorLiteral(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ","))
}
