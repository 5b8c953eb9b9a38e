package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// RoleService administers the system-of-record role table. The
// super_admin level is held by exactly one user; moving it requires an
// explicit transfer and demotes the previous holder to manager.
type RoleService struct {
	roles  repository.RoleRepository
	logger *zap.Logger
}

// NewRoleService constructs the service.
func NewRoleService(roles repository.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{roles: roles, logger: logger}
}

// AssignRoleInput describes a role assignment.
type AssignRoleInput struct {
	UserID             string
	Role               domain.Role
	StaffLevel         *domain.StaffLevel
	TransferSuperAdmin bool
}

// AssignRole writes a role row. Granting super_admin while another user
// holds it is a conflict unless TransferSuperAdmin is set, in which case
// the holder is demoted and the target promoted in one transaction.
func (s *RoleService) AssignRole(ctx context.Context, viewer *accesscontrol.Viewer, input AssignRoleInput) (*domain.UserRole, error) {
	if input.UserID == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}
	if input.Role != domain.RoleStudent && input.Role != domain.RoleStaff {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if input.Role == domain.RoleStudent && input.StaffLevel != nil {
		return nil, apperrors.NewValidationError("students do not carry a staff level", nil)
	}
	if input.Role == domain.RoleStaff {
		if input.StaffLevel == nil {
			return nil, apperrors.NewValidationError("staffLevel is required for staff", nil)
		}
		if !domain.ValidStaffLevel(*input.StaffLevel) {
			return nil, apperrors.NewValidationError("invalid staff level",
				map[string]any{"staffLevel": *input.StaffLevel})
		}
	}

	updatedBy := viewer.UserID
	row := &domain.UserRole{
		UserID:     input.UserID,
		Role:       input.Role,
		StaffLevel: input.StaffLevel,
		UpdatedBy:  &updatedBy,
	}

	if input.StaffLevel != nil && *input.StaffLevel == domain.StaffLevelSuperAdmin {
		return s.assignSuperAdmin(ctx, viewer, row, input.TransferSuperAdmin)
	}

	if err := s.roles.Upsert(ctx, row); err != nil {
		return nil, apperrors.MapError(err)
	}
	return row, nil
}

func (s *RoleService) assignSuperAdmin(ctx context.Context, viewer *accesscontrol.Viewer, row *domain.UserRole, transfer bool) (*domain.UserRole, error) {
	holder, err := s.roles.GetSuperAdmin(ctx)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no holder yet; plain upsert claims the slot
		if err := s.roles.Upsert(ctx, row); err != nil {
			return nil, apperrors.MapError(err)
		}
		return row, nil
	case err != nil:
		return nil, apperrors.MapError(err)
	}

	if holder.UserID == row.UserID {
		if err := s.roles.Upsert(ctx, row); err != nil {
			return nil, apperrors.MapError(err)
		}
		return row, nil
	}

	if !transfer {
		return nil, apperrors.NewConflict("a super admin already exists; set transferSuperAdmin to move the role",
			map[string]any{"currentHolder": holder.UserID})
	}

	if err := s.roles.TransferSuperAdmin(ctx, holder.UserID, row.UserID, row.UpdatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// the holder changed underneath us; surface as a conflict
			return nil, apperrors.NewConflict("super admin holder changed during transfer", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("super admin transferred",
		zap.String("from", holder.UserID),
		zap.String("to", row.UserID),
		zap.String("by", viewer.UserID))
	return row, nil
}

// ListRoles pages through the role table.
func (s *RoleService) ListRoles(ctx context.Context, limit, offset int) ([]domain.UserRole, error) {
	rows, err := s.roles.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// GetRole returns a single user's role row.
func (s *RoleService) GetRole(ctx context.Context, userID string) (*domain.UserRole, error) {
	row, err := s.roles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("role", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return row, nil
}
