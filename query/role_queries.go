package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// RoleListInput asks for the organization's roles.
type RoleListInput struct {
	Viewer types.Viewer
}

// Type implements gocommand.Message.
func (RoleListInput) Type() string {
	return "query.role.list"
}

// Validate implements gocommand.Message.
func (input RoleListInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// RoleListQuery lists roles for the roster and role pages.
type RoleListQuery struct {
	registry types.RoleRegistry
	guard    scope.Guard
}

// NewRoleListQuery builds the list query.
func NewRoleListQuery(registry types.RoleRegistry, guard scope.Guard) *RoleListQuery {
	return &RoleListQuery{
		registry: registry,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[RoleListInput, []types.Role] = (*RoleListQuery)(nil)

// Query returns the roles most senior first.
func (q *RoleListQuery) Query(ctx context.Context, input RoleListInput) ([]types.Role, error) {
	if q.registry == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	scope, err := q.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionRolesRead, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return q.registry.ListRoles(ctx, scope)
}
