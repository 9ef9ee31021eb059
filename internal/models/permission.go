package models

// Permission is a tag from the closed custom-role permission vocabulary.
type Permission string

// The fixed permission vocabulary. Custom roles may only bundle these tags.
const (
	PermissionManageUsers       Permission = "manage_users"
	PermissionManageClasses     Permission = "manage_classes"
	PermissionManageAssignments Permission = "manage_assignments"
	PermissionViewReports       Permission = "view_reports"
	PermissionManageGrades      Permission = "manage_grades"
	PermissionSendNotifications Permission = "send_notifications"
)

// AllPermissions lists the full vocabulary in declaration order.
var AllPermissions = []Permission{
	PermissionManageUsers,
	PermissionManageClasses,
	PermissionManageAssignments,
	PermissionViewReports,
	PermissionManageGrades,
	PermissionSendNotifications,
}

// Valid reports whether the tag belongs to the vocabulary.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// ValidPermissions reports whether every tag in the slice belongs to the vocabulary.
func ValidPermissions(tags []string) bool {
	for _, tag := range tags {
		if !Permission(tag).Valid() {
			return false
		}
	}
	return true
}

// PermissionsFromStrings converts stored string tags into typed permissions,
// silently dropping anything outside the vocabulary.
func PermissionsFromStrings(tags []string) []Permission {
	result := make([]Permission, 0, len(tags))
	for _, tag := range tags {
		p := Permission(tag)
		if p.Valid() {
			result = append(result, p)
		}
	}
	return result
}
