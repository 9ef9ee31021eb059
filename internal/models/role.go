package models

// Role enumerates the built-in profile roles.
type Role string

// Built-in roles, ordered by rank from highest to lowest.
const (
	RoleSuperAdmin       Role = "super_admin"
	RoleManagement       Role = "management"
	RoleInstitutionAdmin Role = "institution_admin"
	RoleTeacher          Role = "teacher"
	RoleCustom           Role = "custom"
)

// AllRoles lists every assignable role.
var AllRoles = []Role{RoleSuperAdmin, RoleManagement, RoleInstitutionAdmin, RoleTeacher, RoleCustom}

// Valid reports whether the role is one of the known enum values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleManagement, RoleInstitutionAdmin, RoleTeacher, RoleCustom:
		return true
	}
	return false
}

// Rank returns the privilege rank of the role. Higher ranks may assign lower ones.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 4
	case RoleManagement:
		return 3
	case RoleInstitutionAdmin:
		return 2
	case RoleTeacher, RoleCustom:
		return 1
	default:
		return 0
	}
}

// RequiresInstitution reports whether profiles holding the role must be bound
// to an institution. Super admins are process-wide and must not be bound.
func (r Role) RequiresInstitution() bool {
	switch r {
	case RoleManagement, RoleInstitutionAdmin, RoleTeacher:
		return true
	}
	return false
}
