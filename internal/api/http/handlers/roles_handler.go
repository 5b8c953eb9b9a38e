package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/dto"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/service"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// RolesHandler exposes role administration.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs the handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// Assign handles PUT /staff/roles/:userId.
func (h *RolesHandler) Assign(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.UserID = c.Params("userId")

	var level *domain.StaffLevel
	if req.StaffLevel != nil {
		l := domain.StaffLevel(*req.StaffLevel)
		level = &l
	}

	row, err := h.roles.AssignRole(c.UserContext(), viewer, service.AssignRoleInput{
		UserID:             req.UserID,
		Role:               domain.Role(req.Role),
		StaffLevel:         level,
		TransferSuperAdmin: req.TransferSuperAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(row)})
}

// List handles GET /staff/roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	rows, err := h.roles.ListRoles(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]dto.RoleResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewRoleResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /staff/roles/:userId.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	row, err := h.roles.GetRole(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(row)})
}
