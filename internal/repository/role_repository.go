package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// RoleRepository persists the system-of-record role table.
type RoleRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserRole, error)
	GetSuperAdmin(ctx context.Context) (*domain.UserRole, error)
	Upsert(ctx context.Context, role *domain.UserRole) error
	// TransferSuperAdmin demotes the current holder to manager and
	// promotes the target in one transaction; a concurrent reader sees
	// both changes or neither.
	TransferSuperAdmin(ctx context.Context, fromUserID, toUserID string, updatedBy *string) error
	List(ctx context.Context, limit, offset int) ([]domain.UserRole, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository instantiates the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserRole, error) {
	const query = `
        SELECT user_id, role, staff_level, updated_by
        FROM user_roles WHERE user_id=$1`
	var role domain.UserRole
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&role.UserID,
		&role.Role,
		&role.StaffLevel,
		&role.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetSuperAdmin(ctx context.Context) (*domain.UserRole, error) {
	const query = `
        SELECT user_id, role, staff_level, updated_by
        FROM user_roles WHERE staff_level=$1`
	var role domain.UserRole
	if err := r.pool.QueryRow(ctx, query, domain.StaffLevelSuperAdmin).Scan(
		&role.UserID,
		&role.Role,
		&role.StaffLevel,
		&role.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Upsert(ctx context.Context, role *domain.UserRole) error {
	const query = `
        INSERT INTO user_roles (user_id, role, staff_level, updated_by, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (user_id)
        DO UPDATE SET role=EXCLUDED.role, staff_level=EXCLUDED.staff_level,
            updated_by=EXCLUDED.updated_by, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, role.UserID, role.Role, role.StaffLevel, role.UpdatedBy)
	return err
}

func (r *roleRepository) TransferSuperAdmin(ctx context.Context, fromUserID, toUserID string, updatedBy *string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const demote = `
        UPDATE user_roles SET staff_level=$1, updated_by=$2, updated_at=NOW()
        WHERE user_id=$3 AND staff_level=$4`
	cmd, err := tx.Exec(ctx, demote, domain.StaffLevelManager, updatedBy, fromUserID, domain.StaffLevelSuperAdmin)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const promote = `
        INSERT INTO user_roles (user_id, role, staff_level, updated_by, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (user_id)
        DO UPDATE SET role=EXCLUDED.role, staff_level=EXCLUDED.staff_level,
            updated_by=EXCLUDED.updated_by, updated_at=NOW()`
	if _, err := tx.Exec(ctx, promote, toUserID, domain.RoleStaff, domain.StaffLevelSuperAdmin, updatedBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *roleRepository) List(ctx context.Context, limit, offset int) ([]domain.UserRole, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT user_id, role, staff_level, updated_by
        FROM user_roles ORDER BY user_id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserRole
	for rows.Next() {
		var role domain.UserRole
		if err := rows.Scan(&role.UserID, &role.Role, &role.StaffLevel, &role.UpdatedBy); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}
