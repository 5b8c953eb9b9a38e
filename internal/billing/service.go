package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// Service coordinates checkout, subscription and portal flows.
type Service struct {
	processor ProcessorClient
	referrals repository.ReferralRepository
	cfg       config.BillingConfig
}

// NewService constructs the billing service.
func NewService(processor ProcessorClient, referrals repository.ReferralRepository, cfg config.BillingConfig) *Service {
	return &Service{processor: processor, referrals: referrals, cfg: cfg}
}

// CheckoutInput is the validated checkout payload.
type CheckoutInput struct {
	PriceID      string
	Quantity     int64
	ReferralCode string
}

// CreateCheckout validates the referral code, then creates a processor
// checkout session. An unrecognized code fails before any session is
// created.
func (s *Service) CreateCheckout(ctx context.Context, customerEmail string, input CheckoutInput) (*domain.CheckoutSession, error) {
	if input.PriceID == "" {
		return nil, apperrors.NewValidationError("priceId is required", nil)
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	var couponID *string
	metadata := map[string]string{}

	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		referral, err := s.referrals.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("Invalid referral code.", nil)
			}
			return nil, apperrors.MapError(err)
		}
		couponID = referral.CouponID
		metadata["referral_code"] = referral.Code
		metadata["referral_owner"] = referral.OwnerID
	}

	session, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerEmail: customerEmail,
		PriceID:       input.PriceID,
		Quantity:      input.Quantity,
		CouponID:      couponID,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
		Metadata:      metadata,
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, apperrors.NewNotConfigured("billing")
		}
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// GetSubscription returns the caller's subscription, or nil when none.
func (s *Service) GetSubscription(ctx context.Context, customerEmail string) (*domain.Subscription, error) {
	sub, err := s.processor.GetSubscription(ctx, customerEmail)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, apperrors.NewNotConfigured("billing")
		}
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// CancelSubscription flags the subscription to lapse at period end.
func (s *Service) CancelSubscription(ctx context.Context, customerEmail string) error {
	sub, err := s.GetSubscription(ctx, customerEmail)
	if err != nil {
		return err
	}
	if sub == nil {
		return apperrors.NewNotFound("subscription", nil)
	}
	if err := s.processor.CancelSubscriptionAtPeriodEnd(ctx, sub.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// CreatePortalSession returns a billing-portal URL for the caller.
func (s *Service) CreatePortalSession(ctx context.Context, customerEmail string) (string, error) {
	portalURL, err := s.processor.CreatePortalSession(ctx, customerEmail, s.cfg.PortalReturnURL)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return "", apperrors.NewNotConfigured("billing")
		}
		return "", apperrors.MapError(err)
	}
	return portalURL, nil
}
