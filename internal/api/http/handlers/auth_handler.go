package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/dto"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/identity"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// AuthHandler exposes the local identity provider's login and the
// caller-introspection endpoint. Login is only available when the
// service runs with the local provider; remote deployments authenticate
// against the managed auth service directly.
type AuthHandler struct {
	local *identity.LocalProvider
}

// NewAuthHandler constructs the handler. local may be nil in remote mode.
func NewAuthHandler(local *identity.LocalProvider) *AuthHandler {
	return &AuthHandler{local: local}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.local == nil {
		return apperrors.NewNotConfigured("local authentication")
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, expiresAt, err := h.local.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt}})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	if h.local == nil {
		return apperrors.NewNotConfigured("local authentication")
	}

	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.local.Register(c.UserContext(), req.Email, req.Password, domain.AppMetadata{
		Role:       req.Role,
		StaffLevel: req.StaffLevel,
	})
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var level *string
	if viewer.StaffLevel != nil {
		s := string(*viewer.StaffLevel)
		level = &s
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		UserID:        viewer.UserID,
		Email:         viewer.Email,
		Role:          string(viewer.Role),
		StaffLevel:    level,
		MFAVerified:   viewer.MFAVerified,
		DashboardPath: accesscontrol.DefaultDashboardPath(viewer.Role, viewer.StaffLevel),
	}})
}
