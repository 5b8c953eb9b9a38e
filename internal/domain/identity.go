package domain

// AppMetadata carries the role hints embedded in an identity provider's
// user record. Raw strings; normalization happens at resolution time.
type AppMetadata struct {
	Role       string `json:"role"`
	StaffLevel string `json:"staff_level"`
}

// Identity is the provider-validated user behind a bearer token.
type Identity struct {
	ID          string
	Email       string
	AppMetadata AppMetadata
}
