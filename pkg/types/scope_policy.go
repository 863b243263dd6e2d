package types

import (
	"context"

	"github.com/google/uuid"
)

// PolicyAction enumerates the authorization actions enforced by the scope
// guard.
type PolicyAction string

const (
	PolicyActionProfilesRead  PolicyAction = "profiles:read"
	PolicyActionProfilesWrite PolicyAction = "profiles:write"
	PolicyActionRolesRead     PolicyAction = "roles:read"
	PolicyActionRolesWrite    PolicyAction = "roles:write"
	PolicyActionActivityRead  PolicyAction = "activity:read"
	PolicyActionReportsRead   PolicyAction = "reports:read"
	PolicyActionReportsWrite  PolicyAction = "reports:write"
)

// PolicyCheck captures the authorization context for a single command/query.
type PolicyCheck struct {
	Viewer   Viewer
	Scope    ScopeFilter
	Action   PolicyAction
	TargetID uuid.UUID
}

// ScopeResolver resolves requested scopes into the canonical row filters for
// the viewer.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, viewer Viewer, requested ScopeFilter) (ScopeFilter, error)
}

// ScopeResolverFunc adapts bare functions to ScopeResolver.
type ScopeResolverFunc func(ctx context.Context, viewer Viewer, requested ScopeFilter) (ScopeFilter, error)

// ResolveScope implements ScopeResolver.
func (f ScopeResolverFunc) ResolveScope(ctx context.Context, viewer Viewer, requested ScopeFilter) (ScopeFilter, error) {
	return f(ctx, viewer, requested)
}

// AuthorizationPolicy governs whether a viewer can perform the action.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}

// OrganizationScopeResolver pins every request to the viewer's organization.
// A request naming a different organization is refused.
type OrganizationScopeResolver struct{}

// ResolveScope implements ScopeResolver.
func (OrganizationScopeResolver) ResolveScope(_ context.Context, viewer Viewer, requested ScopeFilter) (ScopeFilter, error) {
	if requested.OrgID != uuid.Nil && requested.OrgID != viewer.OrganizationID {
		return ScopeFilter{}, ErrForbidden
	}
	requested.OrgID = viewer.OrganizationID
	return requested, nil
}

// PrivilegePolicy maps actions onto the admin and superuser flags:
// profile and role writes plus the activity trail need a superuser, the
// roster and role listings need an admin, and report access is open to any
// signed-in viewer.
type PrivilegePolicy struct{}

// Authorize implements AuthorizationPolicy.
func (PrivilegePolicy) Authorize(_ context.Context, check PolicyCheck) error {
	switch check.Action {
	case PolicyActionProfilesWrite, PolicyActionRolesWrite, PolicyActionActivityRead:
		if !check.Viewer.IsSuperuser {
			return ErrForbidden
		}
	case PolicyActionProfilesRead, PolicyActionRolesRead:
		if !check.Viewer.IsAdmin && !check.Viewer.IsSuperuser {
			return ErrForbidden
		}
	}
	return nil
}
