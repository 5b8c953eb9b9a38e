package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/observability"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

const referralClickKeyPrefix = "referral:clicks:"

// ReferralService resolves referral codes for click redirects. Click
// counting goes through redis; a redis failure falls back to a direct
// SQL increment, and the redirect itself never fails on counting.
type ReferralService struct {
	referrals repository.ReferralRepository
	redis     *redis.Client
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewReferralService constructs the service. The redis client may be
// nil, in which case counting goes straight to SQL.
func NewReferralService(referrals repository.ReferralRepository, client *redis.Client, logger *zap.Logger, metrics *observability.Metrics) *ReferralService {
	return &ReferralService{referrals: referrals, redis: client, logger: logger, metrics: metrics}
}

// ResolveClick looks up an active code and counts the click. The
// returned code carries the redirect target.
func (s *ReferralService) ResolveClick(ctx context.Context, code string) (*domain.ReferralCode, error) {
	if code == "" {
		return nil, apperrors.NewNotFound("referral code", nil)
	}

	referral, err := s.referrals.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("referral code", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.countClick(ctx, code)
	return referral, nil
}

func (s *ReferralService) countClick(ctx context.Context, code string) {
	if s.redis != nil {
		err := s.redis.Incr(ctx, referralClickKeyPrefix+code).Err()
		if err == nil {
			return
		}
		s.logger.Warn("redis click counter failed; falling back to sql",
			zap.String("code", code), zap.Error(err))
	}

	if err := s.referrals.IncrementClicks(ctx, code); err != nil {
		s.metrics.RecordSideEffectFailure("referral_click_count")
		s.logger.Error("click counting failed on both backends",
			zap.String("code", code), zap.Error(err))
	}
}
