package groupable

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors returned by the membership core.
var (
	// ErrNotFound indicates an entity is absent or outside the actor's visible scope.
	// Callers never learn whether the entity exists at all.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor's role fails the coarse gate for an action.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateMembership indicates a (group, user) membership already exists.
	ErrDuplicateMembership = errors.New("membership already exists")
	// ErrInvalidActor indicates a membership operation received no user identity.
	ErrInvalidActor = errors.New("user does not exist")
)

// Policy violation reasons. The exact strings are part of the API surface.
const (
	ReasonMemberRoleNotAllowed = "The operation is not allowed with member role user"
	ReasonPromoteRequiresAdmin = "Only admin can promote to admin"
	ReasonAdminRoleImmutable   = "Cannot change admin role"
	ReasonAdminNotDeletable    = "Admin member cannot be deleted"
)

// PolicyError reports a fine-grained business rule failure with its reason.
// It is distinct from ErrForbidden so callers can branch on the reason kind
// without string matching.
type PolicyError struct {
	Reason string
}

// Error returns the human-readable reason.
func (e *PolicyError) Error() string {
	return e.Reason
}

// AsPolicyError unwraps err into a PolicyError when it carries one.
func AsPolicyError(err error) (*PolicyError, bool) {
	var policyErr *PolicyError
	if errors.As(err, &policyErr) {
		return policyErr, true
	}
	return nil, false
}

// ValidationError reports field-level constraint failures.
type ValidationError struct {
	Fields map[string]string
}

// Error renders the per-field messages in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a ValidationError when it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
