package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/service"
)

// ReferralHandler serves the public referral redirect.
type ReferralHandler struct {
	referrals *service.ReferralService
}

// NewReferralHandler constructs the handler.
func NewReferralHandler(referrals *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// Redirect handles GET /r/:code.
func (h *ReferralHandler) Redirect(c *fiber.Ctx) error {
	referral, err := h.referrals.ResolveClick(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.Redirect(referral.TargetURL, fiber.StatusFound)
}
