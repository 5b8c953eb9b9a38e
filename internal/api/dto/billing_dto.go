package dto

import "time"

// CheckoutRequest payload.
type CheckoutRequest struct {
	PriceID      string `json:"priceId"`
	Quantity     int64  `json:"quantity"`
	ReferralCode string `json:"referralCode"`
}

// CheckoutResponse response body.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SubscriptionResponse response body.
type SubscriptionResponse struct {
	ID                string    `json:"id"`
	PlanID            string    `json:"planId"`
	Status            string    `json:"status"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
}

// PortalResponse response body.
type PortalResponse struct {
	URL string `json:"url"`
}
