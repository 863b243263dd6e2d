package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// SavePurposeInput creates a folder when ID is nil and updates it otherwise.
type SavePurposeInput struct {
	Viewer      types.Viewer
	ID          uuid.UUID
	Name        string
	Description string
	FormatID    *uuid.UUID
	Result      *types.Purpose
}

// Type implements gocommand.Message.
func (SavePurposeInput) Type() string {
	return "command.purpose.save"
}

// Validate implements gocommand.Message.
func (input SavePurposeInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return types.Invalid("name", "required")
	}
	return nil
}

// SavePurposeCommand stores the viewer's folders.
type SavePurposeCommand struct {
	purposes types.PurposeRepository
	formats  types.FormatRepository
	owner    ownerGuard
}

// NewSavePurposeCommand constructs the handler.
func NewSavePurposeCommand(cfg WorklogCommandConfig) *SavePurposeCommand {
	return &SavePurposeCommand{
		purposes: cfg.Purposes,
		formats:  cfg.Formats,
		owner:    newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[SavePurposeInput] = (*SavePurposeCommand)(nil)

// Execute creates or updates the folder. The default format must belong to
// the viewer too.
func (c *SavePurposeCommand) Execute(ctx context.Context, input SavePurposeInput) error {
	if c.purposes == nil || c.formats == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if input.FormatID != nil && *input.FormatID != uuid.Nil {
		if _, err := ownFormat(ctx, c.formats, input.Viewer, *input.FormatID); err != nil {
			return err
		}
	}
	payload := types.Purpose{
		ID:          input.ID,
		UserID:      input.Viewer.ID,
		Name:        input.Name,
		Description: input.Description,
		FormatID:    input.FormatID,
	}
	var (
		saved *types.Purpose
		err   error
	)
	if input.ID == uuid.Nil {
		saved, err = c.purposes.CreatePurpose(ctx, payload)
	} else {
		if _, err = ownPurpose(ctx, c.purposes, input.Viewer, input.ID); err != nil {
			return err
		}
		saved, err = c.purposes.UpdatePurpose(ctx, payload)
	}
	if err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = *saved
	}
	return nil
}

// DeletePurposeInput removes a folder with its reports and images.
type DeletePurposeInput struct {
	Viewer types.Viewer
	ID     uuid.UUID
}

// Type implements gocommand.Message.
func (DeletePurposeInput) Type() string {
	return "command.purpose.delete"
}

// Validate implements gocommand.Message.
func (input DeletePurposeInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.ID == uuid.Nil {
		return ErrIDRequired
	}
	return nil
}

// DeletePurposeCommand deletes one of the viewer's folders.
type DeletePurposeCommand struct {
	purposes types.PurposeRepository
	owner    ownerGuard
}

// NewDeletePurposeCommand constructs the handler.
func NewDeletePurposeCommand(cfg WorklogCommandConfig) *DeletePurposeCommand {
	return &DeletePurposeCommand{
		purposes: cfg.Purposes,
		owner:    newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[DeletePurposeInput] = (*DeletePurposeCommand)(nil)

// Execute deletes the folder.
func (c *DeletePurposeCommand) Execute(ctx context.Context, input DeletePurposeInput) error {
	if c.purposes == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if _, err := ownPurpose(ctx, c.purposes, input.Viewer, input.ID); err != nil {
		return err
	}
	return c.purposes.DeletePurpose(ctx, input.ID)
}
