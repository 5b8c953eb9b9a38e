package dto

import "github.com/brightpath/guidance-service/internal/domain"

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	UserID             string  `json:"userId"`
	Role               string  `json:"role"`
	StaffLevel         *string `json:"staffLevel"`
	TransferSuperAdmin bool    `json:"transferSuperAdmin"`
}

// RoleResponse response body.
type RoleResponse struct {
	UserID     string             `json:"userId"`
	Role       domain.Role        `json:"role"`
	StaffLevel *domain.StaffLevel `json:"staffLevel,omitempty"`
}

// NewRoleResponse maps the role row.
func NewRoleResponse(r *domain.UserRole) RoleResponse {
	return RoleResponse{UserID: r.UserID, Role: r.Role, StaffLevel: r.StaffLevel}
}
