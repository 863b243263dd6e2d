package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// SaveReportInput creates a report when ID is nil and updates it otherwise.
// ImageIDs are attached after the report is stored.
type SaveReportInput struct {
	Viewer     types.Viewer
	ID         uuid.UUID
	PurposeID  uuid.UUID
	FormatID   *uuid.UUID
	Title      string
	Content    string
	ReportDate time.Time
	ImageIDs   []uuid.UUID
	Result     *types.Report
}

// Type implements gocommand.Message.
func (SaveReportInput) Type() string {
	return "command.report.save"
}

// Validate implements gocommand.Message.
func (input SaveReportInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.PurposeID == uuid.Nil {
		return ErrPurposeRequired
	}
	return nil
}

// SaveReportCommand stores reports inside the viewer's folders.
type SaveReportCommand struct {
	purposes types.PurposeRepository
	formats  types.FormatRepository
	reports  types.ReportRepository
	images   types.ImageRepository
	owner    ownerGuard
}

// NewSaveReportCommand constructs the handler.
func NewSaveReportCommand(cfg WorklogCommandConfig) *SaveReportCommand {
	return &SaveReportCommand{
		purposes: cfg.Purposes,
		formats:  cfg.Formats,
		reports:  cfg.Reports,
		images:   cfg.Images,
		owner:    newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[SaveReportInput] = (*SaveReportCommand)(nil)

// Execute checks ownership of every referenced record, saves the report and
// attaches the images.
func (c *SaveReportCommand) Execute(ctx context.Context, input SaveReportInput) error {
	if c.purposes == nil || c.formats == nil || c.reports == nil || c.images == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if _, err := ownPurpose(ctx, c.purposes, input.Viewer, input.PurposeID); err != nil {
		return err
	}
	if input.FormatID != nil && *input.FormatID != uuid.Nil {
		if _, err := ownFormat(ctx, c.formats, input.Viewer, *input.FormatID); err != nil {
			return err
		}
	}
	images, err := ownImages(ctx, c.images, input.Viewer, input.ImageIDs)
	if err != nil {
		return err
	}

	payload := types.Report{
		ID:         input.ID,
		UserID:     input.Viewer.ID,
		PurposeID:  input.PurposeID,
		FormatID:   input.FormatID,
		Title:      input.Title,
		Content:    input.Content,
		ReportDate: input.ReportDate,
	}
	var saved *types.Report
	if input.ID == uuid.Nil {
		saved, err = c.reports.CreateReport(ctx, payload)
	} else {
		if _, err = ownReport(ctx, c.reports, input.Viewer, input.ID); err != nil {
			return err
		}
		saved, err = c.reports.UpdateReport(ctx, payload)
	}
	if err != nil {
		return err
	}

	if len(images) > 0 {
		ids := make([]uuid.UUID, 0, len(images))
		for _, img := range images {
			ids = append(ids, img.ID)
		}
		if err := c.images.AttachToReport(ctx, saved.ID, ids); err != nil {
			return err
		}
		if saved, err = c.reports.GetReport(ctx, saved.ID); err != nil {
			return err
		}
	}
	if input.Result != nil {
		*input.Result = *saved
	}
	return nil
}

// DeleteReportInput removes a report and its images.
type DeleteReportInput struct {
	Viewer types.Viewer
	ID     uuid.UUID
}

// Type implements gocommand.Message.
func (DeleteReportInput) Type() string {
	return "command.report.delete"
}

// Validate implements gocommand.Message.
func (input DeleteReportInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.ID == uuid.Nil {
		return ErrIDRequired
	}
	return nil
}

// DeleteReportCommand deletes one of the viewer's reports.
type DeleteReportCommand struct {
	reports types.ReportRepository
	owner   ownerGuard
}

// NewDeleteReportCommand constructs the handler.
func NewDeleteReportCommand(cfg WorklogCommandConfig) *DeleteReportCommand {
	return &DeleteReportCommand{
		reports: cfg.Reports,
		owner:   newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[DeleteReportInput] = (*DeleteReportCommand)(nil)

// Execute deletes the report.
func (c *DeleteReportCommand) Execute(ctx context.Context, input DeleteReportInput) error {
	if c.reports == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if _, err := ownReport(ctx, c.reports, input.Viewer, input.ID); err != nil {
		return err
	}
	return c.reports.DeleteReport(ctx, input.ID)
}
