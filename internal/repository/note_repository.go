package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// NoteRepository persists staff-only internal notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.InternalNote) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.InternalNote, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.InternalNote) error {
	const query = `
        INSERT INTO internal_notes (ticket_id, author_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.TicketID,
		note.AuthorID,
		note.Body,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *noteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.InternalNote, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, created_at
        FROM internal_notes WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InternalNote
	for rows.Next() {
		var note domain.InternalNote
		if err := rows.Scan(&note.ID, &note.TicketID, &note.AuthorID, &note.Body, &note.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
