package dto

import "time"

// LoginRequest payload for the local identity provider.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for the local identity provider.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	StaffLevel string `json:"staffLevel"`
}

// AuthResponse returns the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse describes the resolved caller.
type MeResponse struct {
	UserID        string  `json:"userId"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	StaffLevel    *string `json:"staffLevel,omitempty"`
	MFAVerified   bool    `json:"mfaVerified"`
	DashboardPath string  `json:"dashboardPath"`
}
