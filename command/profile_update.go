package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
)

// ProfileCommandConfig wires dependencies for profile self-service.
type ProfileCommandConfig struct {
	Profiles types.ProfileRepository
	Hooks    types.Hooks
	Clock    types.Clock
}

// UpdateProfileInput edits the viewer's own name and writing notes. Nil
// fields are left untouched.
type UpdateProfileInput struct {
	Viewer   types.Viewer
	Name     *string
	Personal *string
	Result   *types.Profile
}

// Type implements gocommand.Message.
func (UpdateProfileInput) Type() string {
	return "command.profile.update"
}

// Validate implements gocommand.Message.
func (input UpdateProfileInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	return nil
}

// UpdateProfileCommand applies self-service profile edits.
type UpdateProfileCommand struct {
	profiles types.ProfileRepository
	record   recorder
}

// NewUpdateProfileCommand constructs the profile command handler.
func NewUpdateProfileCommand(cfg ProfileCommandConfig) *UpdateProfileCommand {
	return &UpdateProfileCommand{
		profiles: cfg.Profiles,
		record: recorder{
			hooks: cfg.Hooks,
			clock: safeClock(cfg.Clock),
		},
	}
}

var _ gocommand.Commander[UpdateProfileInput] = (*UpdateProfileCommand)(nil)

// Execute stores the edits on the viewer's profile.
func (c *UpdateProfileCommand) Execute(ctx context.Context, input UpdateProfileInput) error {
	if c.profiles == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	updated, err := c.profiles.UpdateProfile(ctx, types.ProfileMutation{
		UserID:   input.Viewer.ID,
		Name:     input.Name,
		Personal: input.Personal,
	})
	if err != nil {
		return err
	}
	c.record.profile(ctx, input.Viewer, "profile.updated", updated)
	if input.Result != nil {
		*input.Result = *updated
	}
	return nil
}
