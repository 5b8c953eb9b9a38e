package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

func levelPtr(level domain.StaffLevel) *domain.StaffLevel {
	return &level
}

func TestAssignRoleValidation(t *testing.T) {
	roles := newMemRoleRepo()
	svc := NewRoleService(roles, zap.NewNop())
	admin := staffViewer("admin-1", domain.StaffLevelSuperAdmin)

	cases := []struct {
		name  string
		input AssignRoleInput
	}{
		{"missing user", AssignRoleInput{Role: domain.RoleStaff, StaffLevel: levelPtr(domain.StaffLevelTutor)}},
		{"unknown role", AssignRoleInput{UserID: "u1", Role: "teacher"}},
		{"staff without level", AssignRoleInput{UserID: "u1", Role: domain.RoleStaff}},
		{"unknown level", AssignRoleInput{UserID: "u1", Role: domain.RoleStaff, StaffLevel: levelPtr("owner")}},
		{"student with level", AssignRoleInput{UserID: "u1", Role: domain.RoleStudent, StaffLevel: levelPtr(domain.StaffLevelTutor)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AssignRole(context.Background(), admin, tc.input)
			if got := statusCode(t, err); got != 400 {
				t.Fatalf("status = %d, want 400", got)
			}
		})
	}
}

func TestAssignSuperAdminConflictWithoutTransfer(t *testing.T) {
	roles := newMemRoleRepo()
	roles.setStaff("holder", domain.StaffLevelSuperAdmin)
	roles.setStaff("target", domain.StaffLevelSupport)
	svc := NewRoleService(roles, zap.NewNop())
	admin := staffViewer("holder", domain.StaffLevelSuperAdmin)

	_, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		UserID:     "target",
		Role:       domain.RoleStaff,
		StaffLevel: levelPtr(domain.StaffLevelSuperAdmin),
	})
	if got := statusCode(t, err); got != 409 {
		t.Fatalf("status = %d, want 409", got)
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", apperrors.ToDomainError(err).Code)
	}

	// neither side changed
	holder, _ := roles.GetByUserID(context.Background(), "holder")
	if *holder.StaffLevel != domain.StaffLevelSuperAdmin {
		t.Fatalf("holder level = %s, want super_admin", *holder.StaffLevel)
	}
	target, _ := roles.GetByUserID(context.Background(), "target")
	if *target.StaffLevel != domain.StaffLevelSupport {
		t.Fatalf("target level = %s, want support", *target.StaffLevel)
	}
}

func TestAssignSuperAdminTransferDemotesHolder(t *testing.T) {
	roles := newMemRoleRepo()
	roles.setStaff("holder", domain.StaffLevelSuperAdmin)
	svc := NewRoleService(roles, zap.NewNop())
	admin := staffViewer("holder", domain.StaffLevelSuperAdmin)

	_, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		UserID:             "target",
		Role:               domain.RoleStaff,
		StaffLevel:         levelPtr(domain.StaffLevelSuperAdmin),
		TransferSuperAdmin: true,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	holder, _ := roles.GetByUserID(context.Background(), "holder")
	if *holder.StaffLevel != domain.StaffLevelManager {
		t.Fatalf("holder level = %s, want manager", *holder.StaffLevel)
	}
	target, _ := roles.GetByUserID(context.Background(), "target")
	if *target.StaffLevel != domain.StaffLevelSuperAdmin {
		t.Fatalf("target level = %s, want super_admin", *target.StaffLevel)
	}
}

func TestAssignSuperAdminFirstHolderNeedsNoTransfer(t *testing.T) {
	roles := newMemRoleRepo()
	svc := NewRoleService(roles, zap.NewNop())
	admin := staffViewer("admin-1", domain.StaffLevelSuperAdmin)

	row, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		UserID:     "target",
		Role:       domain.RoleStaff,
		StaffLevel: levelPtr(domain.StaffLevelSuperAdmin),
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if *row.StaffLevel != domain.StaffLevelSuperAdmin {
		t.Fatalf("level = %s, want super_admin", *row.StaffLevel)
	}
}

func TestAssignSuperAdminSameHolderIsIdempotent(t *testing.T) {
	roles := newMemRoleRepo()
	roles.setStaff("holder", domain.StaffLevelSuperAdmin)
	svc := NewRoleService(roles, zap.NewNop())
	admin := staffViewer("holder", domain.StaffLevelSuperAdmin)

	_, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		UserID:     "holder",
		Role:       domain.RoleStaff,
		StaffLevel: levelPtr(domain.StaffLevelSuperAdmin),
	})
	if err != nil {
		t.Fatalf("idempotent assign: %v", err)
	}
}
