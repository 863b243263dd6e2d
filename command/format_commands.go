package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// SaveFormatInput creates a template when ID is nil and updates it otherwise.
type SaveFormatInput struct {
	Viewer  types.Viewer
	ID      uuid.UUID
	Name    string
	Content string
	Result  *types.ReportFormat
}

// Type implements gocommand.Message.
func (SaveFormatInput) Type() string {
	return "command.format.save"
}

// Validate implements gocommand.Message.
func (input SaveFormatInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return types.Invalid("name", "required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return types.Invalid("content", "required")
	}
	return nil
}

// SaveFormatCommand stores the viewer's Markdown templates.
type SaveFormatCommand struct {
	formats types.FormatRepository
	owner   ownerGuard
}

// NewSaveFormatCommand constructs the handler.
func NewSaveFormatCommand(cfg WorklogCommandConfig) *SaveFormatCommand {
	return &SaveFormatCommand{
		formats: cfg.Formats,
		owner:   newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[SaveFormatInput] = (*SaveFormatCommand)(nil)

// Execute creates or updates the template.
func (c *SaveFormatCommand) Execute(ctx context.Context, input SaveFormatInput) error {
	if c.formats == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	payload := types.ReportFormat{
		ID:      input.ID,
		UserID:  input.Viewer.ID,
		Name:    input.Name,
		Content: input.Content,
	}
	var (
		saved *types.ReportFormat
		err   error
	)
	if input.ID == uuid.Nil {
		saved, err = c.formats.CreateFormat(ctx, payload)
	} else {
		if _, err = ownFormat(ctx, c.formats, input.Viewer, input.ID); err != nil {
			return err
		}
		saved, err = c.formats.UpdateFormat(ctx, payload)
	}
	if err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = *saved
	}
	return nil
}

// DeleteFormatInput removes a template.
type DeleteFormatInput struct {
	Viewer types.Viewer
	ID     uuid.UUID
}

// Type implements gocommand.Message.
func (DeleteFormatInput) Type() string {
	return "command.format.delete"
}

// Validate implements gocommand.Message.
func (input DeleteFormatInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.ID == uuid.Nil {
		return ErrIDRequired
	}
	return nil
}

// DeleteFormatCommand deletes one of the viewer's templates.
type DeleteFormatCommand struct {
	formats types.FormatRepository
	owner   ownerGuard
}

// NewDeleteFormatCommand constructs the handler.
func NewDeleteFormatCommand(cfg WorklogCommandConfig) *DeleteFormatCommand {
	return &DeleteFormatCommand{
		formats: cfg.Formats,
		owner:   newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[DeleteFormatInput] = (*DeleteFormatCommand)(nil)

// Execute deletes the template.
func (c *DeleteFormatCommand) Execute(ctx context.Context, input DeleteFormatInput) error {
	if c.formats == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if _, err := ownFormat(ctx, c.formats, input.Viewer, input.ID); err != nil {
		return err
	}
	return c.formats.DeleteFormat(ctx, input.ID)
}
