package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// RequestRepository persists the tutoring and support request records
// that backoffice tickets originate from.
type RequestRepository interface {
	CreateTutoring(ctx context.Context, request *domain.TutoringRequest) error
	CreateSupport(ctx context.Context, request *domain.SupportRequest) error
	GetTutoring(ctx context.Context, id string) (*domain.TutoringRequest, error)
	GetSupport(ctx context.Context, id string) (*domain.SupportRequest, error)
	UpdateTutoringStatus(ctx context.Context, id string, status domain.TutoringRequestStatus) error
	UpdateSupportStatus(ctx context.Context, id string, status domain.SupportRequestStatus) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) CreateTutoring(ctx context.Context, request *domain.TutoringRequest) error {
	const query = `
        INSERT INTO tutoring_requests (student_id, subject, details, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.StudentID,
		request.Subject,
		request.Details,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) CreateSupport(ctx context.Context, request *domain.SupportRequest) error {
	const query = `
        INSERT INTO support_requests (student_id, topic, details, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.StudentID,
		request.Topic,
		request.Details,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetTutoring(ctx context.Context, id string) (*domain.TutoringRequest, error) {
	const query = `
        SELECT id, student_id, subject, details, status, created_at, updated_at
        FROM tutoring_requests WHERE id=$1`
	var request domain.TutoringRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.StudentID,
		&request.Subject,
		&request.Details,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) GetSupport(ctx context.Context, id string) (*domain.SupportRequest, error) {
	const query = `
        SELECT id, student_id, topic, details, status, created_at, updated_at
        FROM support_requests WHERE id=$1`
	var request domain.SupportRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.StudentID,
		&request.Topic,
		&request.Details,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) UpdateTutoringStatus(ctx context.Context, id string, status domain.TutoringRequestStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE tutoring_requests SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) UpdateSupportStatus(ctx context.Context, id string, status domain.SupportRequestStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE support_requests SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
