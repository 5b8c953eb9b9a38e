package domain

import "time"

// LocalUser is an account managed by the built-in identity provider,
// used in development deployments without a managed auth service.
type LocalUser struct {
	ID           string
	Email        string
	PasswordHash string
	AppMetadata  AppMetadata
	CreatedAt    time.Time
}
