package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// ChangeRoleInput points a profile at a different role.
type ChangeRoleInput struct {
	Viewer types.Viewer
	UserID uuid.UUID
	RoleID uuid.UUID
	Result *types.MutationResult
}

// Type implements gocommand.Message.
func (ChangeRoleInput) Type() string {
	return "command.profile.role.change"
}

// Validate implements gocommand.Message.
func (input ChangeRoleInput) Validate() error {
	if err := validateRoleTarget(input.Viewer, input.RoleID); err != nil {
		return err
	}
	if input.UserID == uuid.Nil {
		return ErrTargetRequired
	}
	return nil
}

// ChangeRoleCommand updates a profile's role. Only superusers may run it, and
// both the role and the profile must belong to the viewer's organization.
type ChangeRoleCommand struct {
	registry types.RoleRegistry
	profiles types.ProfileRepository
	guard    scope.Guard
	record   recorder
}

// NewChangeRoleCommand constructs the handler.
func NewChangeRoleCommand(cfg RoleCommandConfig) *ChangeRoleCommand {
	return &ChangeRoleCommand{
		registry: cfg.Registry,
		profiles: cfg.Profiles,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[ChangeRoleInput] = (*ChangeRoleCommand)(nil)

// Execute assigns the role and returns the reloaded profile on Result.
func (c *ChangeRoleCommand) Execute(ctx context.Context, input ChangeRoleInput) error {
	if c.registry == nil || c.profiles == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionProfilesWrite, input.UserID)
	if err != nil {
		return fail(input.Result, err)
	}
	role, err := c.registry.GetRole(ctx, input.RoleID, scope)
	if err != nil {
		return fail(input.Result, err)
	}
	target, err := loadOrgProfile(ctx, c.profiles, input.UserID, scope)
	if err != nil {
		return fail(input.Result, err)
	}
	if target.RoleID != nil && *target.RoleID == role.ID {
		settle(input.Result, types.OutcomeUnchanged, role, target)
		return nil
	}
	updated, err := c.profiles.AssignRole(ctx, input.UserID, role.ID)
	if err != nil {
		return fail(input.Result, err)
	}
	c.record.activity(ctx, input.Viewer, updated.ID, "profile.role.changed", "profile", updated.ID.String(), map[string]any{
		"role_id":   role.ID.String(),
		"role_name": role.Name,
	})
	c.record.profile(ctx, input.Viewer, "profile.role.changed", updated)
	settle(input.Result, types.OutcomeApplied, role, updated)
	return nil
}

// SetAdminFlagInput flips the admin flag of a profile.
type SetAdminFlagInput struct {
	Viewer  types.Viewer
	UserID  uuid.UUID
	IsAdmin bool
	Result  *types.MutationResult
}

// Type implements gocommand.Message.
func (SetAdminFlagInput) Type() string {
	return "command.profile.admin.set"
}

// Validate implements gocommand.Message.
func (input SetAdminFlagInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.UserID == uuid.Nil {
		return ErrTargetRequired
	}
	return nil
}

// SetAdminFlagCommand grants or revokes the admin flag. Superuser only.
type SetAdminFlagCommand struct {
	profiles types.ProfileRepository
	guard    scope.Guard
	record   recorder
}

// NewSetAdminFlagCommand constructs the handler.
func NewSetAdminFlagCommand(cfg RoleCommandConfig) *SetAdminFlagCommand {
	return &SetAdminFlagCommand{
		profiles: cfg.Profiles,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		record:   cfg.recorder(),
	}
}

var _ gocommand.Commander[SetAdminFlagInput] = (*SetAdminFlagCommand)(nil)

// Execute stores the flag and returns the reloaded profile on Result.
func (c *SetAdminFlagCommand) Execute(ctx context.Context, input SetAdminFlagInput) error {
	if c.profiles == nil {
		return fail(input.Result, types.ErrServiceNotReady)
	}
	if err := input.Validate(); err != nil {
		return fail(input.Result, err)
	}
	scope, err := c.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionProfilesWrite, input.UserID)
	if err != nil {
		return fail(input.Result, err)
	}
	target, err := loadOrgProfile(ctx, c.profiles, input.UserID, scope)
	if err != nil {
		return fail(input.Result, err)
	}
	if target.IsAdmin == input.IsAdmin {
		settle(input.Result, types.OutcomeUnchanged, nil, target)
		return nil
	}
	updated, err := c.profiles.SetAdmin(ctx, input.UserID, input.IsAdmin)
	if err != nil {
		return fail(input.Result, err)
	}
	c.record.activity(ctx, input.Viewer, updated.ID, "profile.admin.set", "profile", updated.ID.String(), map[string]any{
		"is_admin": input.IsAdmin,
	})
	c.record.profile(ctx, input.Viewer, "profile.admin.set", updated)
	settle(input.Result, types.OutcomeApplied, nil, updated)
	return nil
}

// loadOrgProfile returns the profile when it belongs to the scoped
// organization. Profiles of other organizations read as not found.
func loadOrgProfile(ctx context.Context, profiles types.ProfileRepository, id uuid.UUID, scope types.ScopeFilter) (*types.Profile, error) {
	profile, err := profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope.OrgID != uuid.Nil && profile.OrganizationID != scope.OrgID {
		return nil, types.ErrProfileNotFound
	}
	return profile, nil
}
