package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// LocalUserRepository backs the local identity provider.
type LocalUserRepository interface {
	Create(ctx context.Context, user *domain.LocalUser) error
	GetByID(ctx context.Context, id string) (*domain.LocalUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.LocalUser, error)
}

type localUserRepository struct {
	pool *pgxpool.Pool
}

// NewLocalUserRepository instantiates the repository.
func NewLocalUserRepository(pool *pgxpool.Pool) LocalUserRepository {
	return &localUserRepository{pool: pool}
}

func (r *localUserRepository) Create(ctx context.Context, user *domain.LocalUser) error {
	const query = `
        INSERT INTO local_users (email, password_hash, meta_role, meta_staff_level)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.AppMetadata.Role,
		user.AppMetadata.StaffLevel,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *localUserRepository) GetByID(ctx context.Context, id string) (*domain.LocalUser, error) {
	const query = `
        SELECT id, email, password_hash, meta_role, meta_staff_level, created_at
        FROM local_users WHERE id=$1`
	return r.fetch(ctx, query, id)
}

func (r *localUserRepository) GetByEmail(ctx context.Context, email string) (*domain.LocalUser, error) {
	const query = `
        SELECT id, email, password_hash, meta_role, meta_staff_level, created_at
        FROM local_users WHERE email=$1`
	return r.fetch(ctx, query, email)
}

func (r *localUserRepository) fetch(ctx context.Context, query string, arg any) (*domain.LocalUser, error) {
	var user domain.LocalUser
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.AppMetadata.Role,
		&user.AppMetadata.StaffLevel,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
