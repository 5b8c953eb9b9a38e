package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath/guidance-service/internal/domain"
)

// ReferralRepository persists referral codes and their click counters.
type ReferralRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.ReferralCode, error)
	// IncrementClicks is the SQL fallback used when redis is unreachable.
	IncrementClicks(ctx context.Context, code string) error
}

type referralRepository struct {
	pool *pgxpool.Pool
}

// NewReferralRepository instantiates the repository.
func NewReferralRepository(pool *pgxpool.Pool) ReferralRepository {
	return &referralRepository{pool: pool}
}

func (r *referralRepository) GetByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	const query = `
        SELECT id, code, owner_id, coupon_id, target_url, clicks, active, created_at
        FROM referral_codes WHERE code=$1 AND active=TRUE`
	var referral domain.ReferralCode
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&referral.ID,
		&referral.Code,
		&referral.OwnerID,
		&referral.CouponID,
		&referral.TargetURL,
		&referral.Clicks,
		&referral.Active,
		&referral.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) IncrementClicks(ctx context.Context, code string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE referral_codes SET clicks = clicks + 1 WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
