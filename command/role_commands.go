package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// CreateRoleInput carries the name of a new role.
type CreateRoleInput struct {
	Viewer types.Viewer
	Name   string
	Result *types.MutationResult
}

// Type implements gocommand.Message.
func (CreateRoleInput) Type() string {
	return "command.role.create"
}

// Validate implements gocommand.Message.
func (input CreateRoleInput) Validate() error {
	return validateRoleMutation(input.Viewer, input.Name)
}

// CreateRoleCommand adds a role above the most senior existing one.
type CreateRoleCommand struct {
	registry types.RoleRegistry
	guard    scope.Guard
	record   recorder
}

// NewCreateRoleCommand wires a role creation handler.
func NewCreateRoleCommand(cfg RoleCommandConfig) *CreateRoleCommand {
	return &CreateRoleCommand{
		registry: cfg.Registry,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[CreateRoleInput] = (*CreateRoleCommand)(nil)

// Execute validates and forwards the creation payload to the registry.
func (c *CreateRoleCommand) Execute(ctx context.Context, input CreateRoleInput) error {
	if c.registry == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionRolesWrite, uuid.Nil)
	if err != nil {
		return fail(input.Result, err)
	}
	role, err := c.registry.CreateRole(ctx, types.RoleMutation{
		Name:    strings.TrimSpace(input.Name),
		Scope:   scope,
		ActorID: input.Viewer.ID,
	})
	if err != nil {
		return fail(input.Result, err)
	}
	c.record.activity(ctx, input.Viewer, uuid.Nil, "role.created", "role", role.ID.String(), map[string]any{
		"name":  role.Name,
		"level": role.Level,
	})
	settle(input.Result, types.OutcomeApplied, role, nil)
	return nil
}

// RenameRoleInput renames an existing role.
type RenameRoleInput struct {
	Viewer types.Viewer
	RoleID uuid.UUID
	Name   string
	Result *types.MutationResult
}

// Type implements gocommand.Message.
func (RenameRoleInput) Type() string {
	return "command.role.rename"
}

// Validate implements gocommand.Message.
func (input RenameRoleInput) Validate() error {
	if err := validateRoleTarget(input.Viewer, input.RoleID); err != nil {
		return err
	}
	return validateRoleMutation(input.Viewer, input.Name)
}

// RenameRoleCommand changes the display name of a role.
type RenameRoleCommand struct {
	registry types.RoleRegistry
	guard    scope.Guard
	record   recorder
}

// NewRenameRoleCommand constructs the rename handler.
func NewRenameRoleCommand(cfg RoleCommandConfig) *RenameRoleCommand {
	return &RenameRoleCommand{
		registry: cfg.Registry,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[RenameRoleInput] = (*RenameRoleCommand)(nil)

// Execute renames the role within the viewer's organization.
func (c *RenameRoleCommand) Execute(ctx context.Context, input RenameRoleInput) error {
	if c.registry == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionRolesWrite, input.RoleID)
	if err != nil {
		return fail(input.Result, err)
	}
	role, err := c.registry.RenameRole(ctx, input.RoleID, types.RoleMutation{
		Name:    strings.TrimSpace(input.Name),
		Scope:   scope,
		ActorID: input.Viewer.ID,
	})
	if err != nil {
		return fail(input.Result, err)
	}
	c.record.activity(ctx, input.Viewer, uuid.Nil, "role.renamed", "role", role.ID.String(), map[string]any{
		"name": role.Name,
	})
	settle(input.Result, types.OutcomeApplied, role, nil)
	return nil
}

// DeleteRoleInput removes a role.
type DeleteRoleInput struct {
	Viewer types.Viewer
	RoleID uuid.UUID
	Result *types.MutationResult
}

// Type implements gocommand.Message.
func (DeleteRoleInput) Type() string {
	return "command.role.delete"
}

// Validate implements gocommand.Message.
func (input DeleteRoleInput) Validate() error {
	return validateRoleTarget(input.Viewer, input.RoleID)
}

// DeleteRoleCommand deletes roles no profile references.
type DeleteRoleCommand struct {
	registry types.RoleRegistry
	guard    scope.Guard
	record   recorder
}

// NewDeleteRoleCommand constructs the delete handler.
func NewDeleteRoleCommand(cfg RoleCommandConfig) *DeleteRoleCommand {
	return &DeleteRoleCommand{
		registry: cfg.Registry,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[DeleteRoleInput] = (*DeleteRoleCommand)(nil)

// Execute deletes the role. A role still assigned to a profile yields
// types.ErrRoleInUse and is left in place.
func (c *DeleteRoleCommand) Execute(ctx context.Context, input DeleteRoleInput) error {
	if c.registry == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionRolesWrite, input.RoleID)
	if err != nil {
		return fail(input.Result, err)
	}
	if err := c.registry.DeleteRole(ctx, input.RoleID, scope, input.Viewer.ID); err != nil {
		return fail(input.Result, err)
	}
	c.record.activity(ctx, input.Viewer, uuid.Nil, "role.deleted", "role", input.RoleID.String(), nil)
	settle(input.Result, types.OutcomeApplied, nil, nil)
	return nil
}

// MoveRoleInput reorders a role one step up or down.
type MoveRoleInput struct {
	Viewer    types.Viewer
	RoleID    uuid.UUID
	Direction types.Direction
	Result    *types.MutationResult
}

// Type implements gocommand.Message.
func (MoveRoleInput) Type() string {
	return "command.role.move"
}

// Validate implements gocommand.Message.
func (input MoveRoleInput) Validate() error {
	if err := validateRoleTarget(input.Viewer, input.RoleID); err != nil {
		return err
	}
	if !input.Direction.Valid() {
		return ErrDirectionInvalid
	}
	return nil
}

// MoveRoleCommand swaps a role's level with its neighbor.
type MoveRoleCommand struct {
	registry types.RoleRegistry
	guard    scope.Guard
	record   recorder
}

// NewMoveRoleCommand constructs the move handler.
func NewMoveRoleCommand(cfg RoleCommandConfig) *MoveRoleCommand {
	return &MoveRoleCommand{
		registry: cfg.Registry,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[MoveRoleInput] = (*MoveRoleCommand)(nil)

// Execute performs the swap. Moving the first role up or the last role down
// is reported as types.OutcomeUnchanged.
func (c *MoveRoleCommand) Execute(ctx context.Context, input MoveRoleInput) error {
	if c.registry == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionRolesWrite, input.RoleID)
	if err != nil {
		return fail(input.Result, err)
	}
	moved, err := c.registry.MoveRole(ctx, input.RoleID, input.Direction, scope, input.Viewer.ID)
	if err != nil {
		return fail(input.Result, err)
	}
	if !moved {
		settle(input.Result, types.OutcomeUnchanged, nil, nil)
		return nil
	}
	c.record.activity(ctx, input.Viewer, uuid.Nil, "role.moved", "role", input.RoleID.String(), map[string]any{
		"direction": string(input.Direction),
	})
	settle(input.Result, types.OutcomeApplied, nil, nil)
	return nil
}
