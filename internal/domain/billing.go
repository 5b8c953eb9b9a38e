package domain

import "time"

// ReferralCode is a promotional code that grants a checkout discount and
// tracks link clicks.
type ReferralCode struct {
	ID        string
	Code      string
	OwnerID   string
	CouponID  *string
	TargetURL string
	Clicks    int64
	Active    bool
	CreatedAt time.Time
}

// CheckoutSession is the processor-side session handed back to the client.
type CheckoutSession struct {
	ID  string
	URL string
}

// Subscription mirrors the processor's subscription state for a customer.
type Subscription struct {
	ID                string
	CustomerID        string
	PlanID            string
	Status            string
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  time.Time
}
