package command

import (
	"strings"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// RoleCommandConfig wires dependencies shared by the role and admin-flag
// commands.
type RoleCommandConfig struct {
	Registry   types.RoleRegistry
	Profiles   types.ProfileRepository
	Activity   types.ActivitySink
	Hooks      types.Hooks
	Clock      types.Clock
	Logger     types.Logger
	ScopeGuard scope.Guard
}

func (cfg RoleCommandConfig) recorder() recorder {
	return recorder{
		sink:   cfg.Activity,
		hooks:  cfg.Hooks,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
	}
}

func validateRoleMutation(viewer types.Viewer, name string) error {
	if viewer.IsZero() {
		return ErrViewerRequired
	}
	if strings.TrimSpace(name) == "" {
		return ErrRoleNameRequired
	}
	return nil
}

func validateRoleTarget(viewer types.Viewer, roleID uuid.UUID) error {
	if viewer.IsZero() {
		return ErrViewerRequired
	}
	if roleID == uuid.Nil {
		return ErrRoleIDRequired
	}
	return nil
}
