package security

import (
	"context"
	"fmt"
	"strings"
)

// Role is the caller's role as asserted by the identity provider
type Role string

const (
	RoleParent Role = "PARENT"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole normalises a role claim. An empty claim maps to PARENT.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case "":
		return RoleParent, nil
	case RoleParent, RoleStaff, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Capability names an action that needs more than session ownership
type Capability string

const (
	// CapReportCentre allows missed-word reports for the caller's own centre.
	CapReportCentre Capability = "reports.centre"
	// CapReportAnyCentre allows missed-word reports for any centre.
	CapReportAnyCentre Capability = "reports.any_centre"
	// CapLexiconEdit allows linking words into compositions.
	CapLexiconEdit Capability = "lexicon.edit"
)

var roleCapabilities = map[Role][]Capability{
	RoleParent: nil,
	RoleStaff:  {CapReportCentre},
	RoleAdmin:  {CapReportCentre, CapReportAnyCentre, CapLexiconEdit},
}

// Identity is the authenticated caller
type Identity struct {
	LearnerID int64
	CentreID  *int64
	Role      Role
}

// Can reports whether the identity holds the capability
func (id Identity) Can(capability Capability) bool {
	for _, c := range roleCapabilities[id.Role] {
		if c == capability {
			return true
		}
	}
	return false
}

// CanReportOnCentre reports whether the identity may read reports for centreID
func (id Identity) CanReportOnCentre(centreID int64) bool {
	if id.Can(CapReportAnyCentre) {
		return true
	}
	return id.Can(CapReportCentre) && id.CentreID != nil && *id.CentreID == centreID
}

type identityKey struct{}

// WithIdentity stores the identity in the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
