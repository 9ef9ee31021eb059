// Package policy implements the role-scoped authorization engine. Decisions
// are pure functions of the actor, the action and the target resource: there
// is no hidden state, identical inputs always produce identical decisions and
// evaluation is safe to repeat concurrently.
package policy

import (
	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// Action identifies an operation class against a resource kind.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceKind identifies the table a decision concerns.
type ResourceKind string

const (
	KindInstitution ResourceKind = "institutions"
	KindProfile     ResourceKind = "profiles"
	KindCustomRole  ResourceKind = "custom_roles"
	KindTeacher     ResourceKind = "teachers"
	KindStudent     ResourceKind = "students"
	KindClass       ResourceKind = "classes"
	KindAssignment  ResourceKind = "assignments"
	KindAuditLog    ResourceKind = "audit_logs"
)

// DenyReason explains why a decision came back denied.
type DenyReason string

const (
	ReasonCrossInstitution DenyReason = "cross_institution_denied"
	ReasonNoMatchingPolicy DenyReason = "no_matching_policy"
	ReasonSelfModification DenyReason = "self_modification_denied"
)

// Actor is the authenticated identity plus its resolved authorization context.
type Actor struct {
	ID            uuid.UUID
	Role          models.Role
	InstitutionID *uuid.UUID
	Permissions   []models.Permission
	// TeacherID links the actor to its teacher record when the profile
	// belongs to teaching staff.
	TeacherID *uuid.UUID
}

// HasPermission reports whether the actor's explicit permission set carries the tag.
func (a Actor) HasPermission(p models.Permission) bool {
	for _, held := range a.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// Resource describes the target of an authorization decision.
type Resource struct {
	Kind ResourceKind
	ID   uuid.UUID
	// InstitutionID is the owning institution; nil for institution-agnostic
	// rows such as global custom roles. Institution rows own themselves.
	InstitutionID *uuid.UUID
	// TeacherID carries class/assignment teacher ownership for rule 4.
	TeacherID *uuid.UUID
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision carrying the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize evaluates the decision table top to bottom and fails closed.
func Authorize(actor Actor, action Action, resource Resource) Decision {
	if actor.Role == models.RoleSuperAdmin {
		return Allow()
	}

	// Any cross-institution attempt by a non-super-admin is rejected before
	// role-specific rules apply.
	if resource.InstitutionID != nil {
		if actor.InstitutionID == nil || *actor.InstitutionID != *resource.InstitutionID {
			return Deny(ReasonCrossInstitution)
		}
	}

	// Rows without an owning institution (super_admin profiles, global custom
	// roles) sit outside every institution-bound role's scope. Custom actors
	// proceed; their branch decides nil-scope access explicitly.
	if resource.InstitutionID == nil {
		switch actor.Role {
		case models.RoleManagement, models.RoleInstitutionAdmin, models.RoleTeacher:
			return Deny(ReasonNoMatchingPolicy)
		}
	}

	switch actor.Role {
	case models.RoleManagement:
		return authorizeManagement(action, resource)
	case models.RoleInstitutionAdmin:
		return authorizeInstitutionAdmin(action, resource)
	case models.RoleTeacher:
		return authorizeTeacher(actor, action, resource)
	case models.RoleCustom:
		return authorizeCustom(actor, action, resource)
	}

	return Deny(ReasonNoMatchingPolicy)
}

// Management oversees a single institution: read/update on its scoped rows,
// but create/delete only for custom role bundles. Role assignment runs
// through the profile update path plus the rank checks in the role service.
func authorizeManagement(action Action, resource Resource) Decision {
	switch resource.Kind {
	case KindInstitution:
		if action == ActionRead {
			return Allow()
		}
	case KindCustomRole:
		return Allow()
	case KindProfile, KindTeacher, KindStudent, KindClass, KindAssignment:
		if action == ActionRead || action == ActionUpdate {
			return Allow()
		}
	case KindAuditLog:
		if action == ActionRead {
			return Allow()
		}
	}
	return Deny(ReasonNoMatchingPolicy)
}

// Institution admins own the day-to-day records of their institution but can
// never touch the institution row itself, custom roles or profiles.
func authorizeInstitutionAdmin(_ Action, resource Resource) Decision {
	switch resource.Kind {
	case KindTeacher, KindStudent, KindClass:
		return Allow()
	}
	return Deny(ReasonNoMatchingPolicy)
}

// Teachers read the classes they are assigned to and own the full assignment
// lifecycle for those classes. Everything else stays read-only or denied.
func authorizeTeacher(actor Actor, action Action, resource Resource) Decision {
	if actor.TeacherID == nil {
		return Deny(ReasonNoMatchingPolicy)
	}
	if resource.Kind != KindClass && resource.Kind != KindAssignment {
		return Deny(ReasonNoMatchingPolicy)
	}
	if resource.TeacherID == nil || *resource.TeacherID != *actor.TeacherID {
		return Deny(ReasonNoMatchingPolicy)
	}
	if action == ActionRead {
		return Allow()
	}
	if resource.Kind == KindAssignment {
		return Allow()
	}
	return Deny(ReasonNoMatchingPolicy)
}

func authorizeCustom(actor Actor, action Action, resource Resource) Decision {
	// A global custom role only reaches institution-agnostic rows; an
	// institution-bound one never reaches global rows. The cross-institution
	// rule above already rejected mismatched institutions.
	if resource.InstitutionID == nil && actor.InstitutionID != nil {
		return Deny(ReasonNoMatchingPolicy)
	}

	required, ok := requiredPermission(resource.Kind)
	if !ok {
		return Deny(ReasonNoMatchingPolicy)
	}
	if actor.HasPermission(required) {
		return Allow()
	}
	if action == ActionRead && actor.HasPermission(models.PermissionViewReports) {
		return Allow()
	}
	return Deny(ReasonNoMatchingPolicy)
}

// requiredPermission maps a resource kind to the tag that gates it for
// custom-role actors. Institutions and custom roles stay out of reach.
func requiredPermission(kind ResourceKind) (models.Permission, bool) {
	switch kind {
	case KindProfile, KindTeacher, KindStudent:
		return models.PermissionManageUsers, true
	case KindClass:
		return models.PermissionManageClasses, true
	case KindAssignment:
		return models.PermissionManageAssignments, true
	case KindAuditLog:
		return models.PermissionViewReports, true
	}
	return "", false
}

// ListScope returns the institution filter implicitly applied to read-many
// operations. Super admins list unscoped; everyone else is confined to their
// own institution. The second return value is false when the actor has no
// institution to scope to and therefore may not list at all.
func ListScope(actor Actor) (*uuid.UUID, bool) {
	if actor.Role == models.RoleSuperAdmin {
		return nil, true
	}
	if actor.InstitutionID == nil {
		return nil, false
	}
	return actor.InstitutionID, true
}
