package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/edu-admin-api/internal/policy"
)

// Sentinel errors surfaced by the services. Handlers dispatch on these with
// errors.Is; none of them is fatal to the process.
var (
	// ErrInvalidCredentials is returned for every failed authentication,
	// regardless of whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDenied matches every authorization denial; the concrete reason
	// travels in DeniedError.
	ErrDenied = errors.New("operation denied")

	// ErrInvalidRoleInstitutionPairing rejects profiles whose role and
	// institution binding contradict each other.
	ErrInvalidRoleInstitutionPairing = errors.New("invalid role/institution pairing")

	// ErrReferentialIntegrityViolation rejects institution deletes while
	// owned rows still exist and no cascade was requested.
	ErrReferentialIntegrityViolation = errors.New("institution still owns records")

	// ErrStoreUnavailable wraps transient backing-store failures. Callers
	// may retry the whole operation; the services never retry on their own.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrEmailTaken                 = errors.New("email already registered")
	ErrInstitutionSuspended       = errors.New("institution is suspended")
	ErrTeacherInstitutionMismatch = errors.New("teacher belongs to a different institution")
	ErrClassHasNoTeacher          = errors.New("class has no assigned teacher")
	ErrInvalidGrade               = errors.New("unknown grade level")
	ErrUnsupportedAvatarType      = errors.New("avatar must be an image")

	ErrInstitutionNotFound = errors.New("institution not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrCustomRoleNotFound  = errors.New("custom role not found")
	ErrTeacherNotFound     = errors.New("teacher not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrClassNotFound       = errors.New("class not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
)

// DeniedError carries the policy engine's deny reason. It matches ErrDenied
// under errors.Is so handlers can treat all denials uniformly.
type DeniedError struct {
	Reason policy.DenyReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("operation denied: %s", e.Reason)
}

// Is makes every DeniedError match the ErrDenied sentinel.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

func denied(reason policy.DenyReason) error {
	return &DeniedError{Reason: reason}
}

// DenyReasonOf extracts the policy reason from an error chain, if present.
func DenyReasonOf(err error) (policy.DenyReason, bool) {
	var deniedErr *DeniedError
	if errors.As(err, &deniedErr) {
		return deniedErr.Reason, true
	}
	return "", false
}
