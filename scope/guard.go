package scope

import (
	"context"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// Guard enforces resolved scopes and authorization policies for commands and
// queries.
type Guard interface {
	Enforce(ctx context.Context, viewer types.Viewer, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (types.ScopeFilter, error)
}

type guard struct {
	resolver types.ScopeResolver
	policy   types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied resolver and policy. Nil
// dependencies are treated as no-ops.
func NewGuard(resolver types.ScopeResolver, policy types.AuthorizationPolicy) Guard {
	return guard{
		resolver: resolver,
		policy:   policy,
	}
}

// DefaultGuard pins every request to the viewer's organization and applies
// types.PrivilegePolicy.
func DefaultGuard() Guard {
	return NewGuard(types.OrganizationScopeResolver{}, types.PrivilegePolicy{})
}

// Ensure returns g, or DefaultGuard when g is nil, so constructors never run
// unguarded.
func Ensure(g Guard) Guard {
	if g == nil {
		return DefaultGuard()
	}
	return g
}

// NopGuard returns a guard that leaves scopes unchanged and never blocks.
// It still refuses a missing viewer.
func NopGuard() Guard {
	return guard{}
}

// Enforce resolves and authorizes the requested scope for the action.
func (g guard) Enforce(ctx context.Context, viewer types.Viewer, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (types.ScopeFilter, error) {
	if viewer.IsZero() {
		return types.ScopeFilter{}, types.ErrViewerRequired
	}
	scope := requested
	if g.resolver != nil {
		resolved, err := g.resolver.ResolveScope(ctx, viewer, requested)
		if err != nil {
			return types.ScopeFilter{}, err
		}
		scope = resolved
	}
	if g.policy != nil && action != "" {
		check := types.PolicyCheck{
			Viewer:   viewer,
			Scope:    scope,
			Action:   action,
			TargetID: target,
		}
		if err := g.policy.Authorize(ctx, check); err != nil {
			return types.ScopeFilter{}, err
		}
	}
	return scope, nil
}
