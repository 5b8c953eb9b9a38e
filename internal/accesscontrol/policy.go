package accesscontrol

import "github.com/brightpath/guidance-service/internal/domain"

// Pure policy functions. No I/O; every function is total over its inputs.

// CanManageRoles reports whether the level may administer user roles.
func CanManageRoles(level *domain.StaffLevel) bool {
	return level != nil && *level == domain.StaffLevelSuperAdmin
}

// CanManageTickets reports whether the level may create, assign and
// manage tickets it does not hold.
func CanManageTickets(level *domain.StaffLevel) bool {
	if level == nil {
		return false
	}
	return *level == domain.StaffLevelManager || *level == domain.StaffLevelSuperAdmin
}

// CanViewAllTickets mirrors CanManageTickets.
func CanViewAllTickets(level *domain.StaffLevel) bool {
	return CanManageTickets(level)
}

// AssignedTeamFor maps a staff level to the team it serves, or nil for
// levels that are not on a ticket-handling team.
func AssignedTeamFor(level *domain.StaffLevel) *domain.Team {
	if level == nil {
		return nil
	}
	switch *level {
	case domain.StaffLevelTutor:
		team := domain.TeamTutor
		return &team
	case domain.StaffLevelSupport:
		team := domain.TeamSupport
		return &team
	}
	return nil
}

// RequiresStepUpMFA reports whether a privileged mutation must be blocked
// until the caller presents a higher-assurance token.
func RequiresStepUpMFA(level *domain.StaffLevel, mfaVerified bool) bool {
	if level == nil {
		return false
	}
	if *level != domain.StaffLevelManager && *level != domain.StaffLevelSuperAdmin {
		return false
	}
	return !mfaVerified
}

// DefaultDashboardPath returns the canonical landing route for the role.
// Presentation routing, not security; always returns a value.
func DefaultDashboardPath(role domain.Role, level *domain.StaffLevel) string {
	if role == domain.RoleStaff && level != nil {
		switch *level {
		case domain.StaffLevelSuperAdmin:
			return "/admin"
		case domain.StaffLevelManager:
			return "/manager"
		case domain.StaffLevelTutor:
			return "/tutor/queue"
		case domain.StaffLevelSupport:
			return "/support/queue"
		}
	}
	return "/dashboard"
}
