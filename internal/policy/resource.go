package policy

import (
	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// InstitutionResource wraps an institution row. Institutions own themselves,
// which lets the cross-institution rule cover reads of the actor's own row.
func InstitutionResource(m models.Institution) Resource {
	id := m.ID
	return Resource{Kind: KindInstitution, ID: m.ID, InstitutionID: &id}
}

// NewInstitutionResource describes an institution row that does not exist yet.
func NewInstitutionResource() Resource {
	return Resource{Kind: KindInstitution}
}

// ProfileResource wraps a profile row.
func ProfileResource(m models.Profile) Resource {
	return Resource{Kind: KindProfile, ID: m.ID, InstitutionID: m.InstitutionID}
}

// CustomRoleResource wraps a custom role row.
func CustomRoleResource(m models.CustomRole) Resource {
	return Resource{Kind: KindCustomRole, ID: m.ID, InstitutionID: m.InstitutionID}
}

// TeacherResource wraps a teacher row.
func TeacherResource(m models.Teacher) Resource {
	inst := m.InstitutionID
	return Resource{Kind: KindTeacher, ID: m.ID, InstitutionID: &inst}
}

// StudentResource wraps a student row.
func StudentResource(m models.Student) Resource {
	inst := m.InstitutionID
	return Resource{Kind: KindStudent, ID: m.ID, InstitutionID: &inst}
}

// ClassResource wraps a class row, carrying its assigned teacher for rule 4.
func ClassResource(m models.Class) Resource {
	inst := m.InstitutionID
	return Resource{Kind: KindClass, ID: m.ID, InstitutionID: &inst, TeacherID: m.TeacherID}
}

// AssignmentResource wraps an assignment row. The owning institution comes
// from the parent class, which callers must have loaded.
func AssignmentResource(m models.Assignment, class models.Class) Resource {
	inst := class.InstitutionID
	teacher := m.TeacherID
	return Resource{Kind: KindAssignment, ID: m.ID, InstitutionID: &inst, TeacherID: &teacher}
}

// ScopedResource describes a row of the given kind being created under an
// institution, before it has an identifier.
func ScopedResource(kind ResourceKind, institutionID uuid.UUID) Resource {
	inst := institutionID
	return Resource{Kind: kind, InstitutionID: &inst}
}

// AuditLogResource describes the audit trail within an institution scope.
// A nil institution means the global trail.
func AuditLogResource(institutionID *uuid.UUID) Resource {
	return Resource{Kind: KindAuditLog, InstitutionID: institutionID}
}
