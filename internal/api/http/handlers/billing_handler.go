package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/dto"
	"github.com/brightpath/guidance-service/internal/billing"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// BillingHandler exposes checkout, subscription and portal endpoints.
type BillingHandler struct {
	billing *billing.Service
}

// NewBillingHandler constructs the handler.
func NewBillingHandler(service *billing.Service) *BillingHandler {
	return &BillingHandler{billing: service}
}

// CreateCheckout handles POST /billing/checkout.
func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.billing.CreateCheckout(c.UserContext(), viewer.Email, billing.CheckoutInput{
		PriceID:      req.PriceID,
		Quantity:     req.Quantity,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}})
}

// GetSubscription handles GET /billing/subscription.
func (h *BillingHandler) GetSubscription(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	sub, err := h.billing.GetSubscription(c.UserContext(), viewer.Email)
	if err != nil {
		return err
	}
	if sub == nil {
		return apperrors.NewNotFound("subscription", nil)
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{
		ID:                sub.ID,
		PlanID:            sub.PlanID,
		Status:            sub.Status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}})
}

// CancelSubscription handles POST /billing/subscription/cancel.
func (h *BillingHandler) CancelSubscription(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.billing.CancelSubscription(c.UserContext(), viewer.Email); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePortalSession handles POST /billing/portal.
func (h *BillingHandler) CreatePortalSession(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	url, err := h.billing.CreatePortalSession(c.UserContext(), viewer.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PortalResponse{URL: url}})
}
