package domain

// Role is the canonical account role.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

// StaffLevel is the sub-role within staff controlling ticket and
// role-management permissions.
type StaffLevel string

const (
	StaffLevelTutor      StaffLevel = "tutor"
	StaffLevelSupport    StaffLevel = "support"
	StaffLevelManager    StaffLevel = "manager"
	StaffLevelSuperAdmin StaffLevel = "super_admin"
)

// ValidStaffLevel reports whether the value is a known staff level.
func ValidStaffLevel(level StaffLevel) bool {
	switch level {
	case StaffLevelTutor, StaffLevelSupport, StaffLevelManager, StaffLevelSuperAdmin:
		return true
	}
	return false
}

// Team identifies a ticket-handling queue.
type Team string

const (
	TeamTutor   Team = "tutor"
	TeamSupport Team = "support"
)

// ValidTeam reports whether the value is a known team.
func ValidTeam(team Team) bool {
	return team == TeamTutor || team == TeamSupport
}

// NormalizeRole reconciles legacy and canonical role representations.
// Legacy "tutor" and "admin" collapse into staff with levels tutor and
// super_admin; "staff" keeps a recognized level and otherwise defaults
// to support. Anything else is a student with no level.
func NormalizeRole(rawRole, rawLevel string) (Role, *StaffLevel) {
	switch rawRole {
	case "staff":
		level := StaffLevel(rawLevel)
		if !ValidStaffLevel(level) {
			level = StaffLevelSupport
		}
		return RoleStaff, &level
	case "tutor":
		level := StaffLevelTutor
		return RoleStaff, &level
	case "admin":
		level := StaffLevelSuperAdmin
		return RoleStaff, &level
	}
	return RoleStudent, nil
}

// UserRole is the system-of-record role row for a user.
type UserRole struct {
	UserID     string
	Role       Role
	StaffLevel *StaffLevel
	UpdatedBy  *string
}
