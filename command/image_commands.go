package command

import (
	"context"
	"encoding/base64"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// UploadImageInput stores an image. Either Data or Base64 must be set;
// Base64 may carry a data URL prefix.
type UploadImageInput struct {
	Viewer    types.Viewer
	FileName  string
	MimeType  string
	Data      []byte
	Base64    string
	PurposeID *uuid.UUID
	Result    *types.Image
}

// Type implements gocommand.Message.
func (UploadImageInput) Type() string {
	return "command.image.upload"
}

// Validate implements gocommand.Message.
func (input UploadImageInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input.MimeType)), "image/") {
		return types.Invalid("mime_type", "must be an image type")
	}
	if len(input.Data) == 0 && strings.TrimSpace(input.Base64) == "" {
		return types.Invalid("data", "required")
	}
	return nil
}

// UploadImageCommand stores images owned by the viewer.
type UploadImageCommand struct {
	images   types.ImageRepository
	purposes types.PurposeRepository
	owner    ownerGuard
}

// NewUploadImageCommand constructs the handler.
func NewUploadImageCommand(cfg WorklogCommandConfig) *UploadImageCommand {
	return &UploadImageCommand{
		images:   cfg.Images,
		purposes: cfg.Purposes,
		owner:    newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[UploadImageInput] = (*UploadImageCommand)(nil)

// Execute decodes and stores the image.
func (c *UploadImageCommand) Execute(ctx context.Context, input UploadImageInput) error {
	if c.images == nil || c.purposes == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, uuid.Nil); err != nil {
		return err
	}
	if input.PurposeID != nil && *input.PurposeID != uuid.Nil {
		if _, err := ownPurpose(ctx, c.purposes, input.Viewer, *input.PurposeID); err != nil {
			return err
		}
	}
	data := input.Data
	if len(data) == 0 {
		decoded, err := DecodeBase64Payload(input.Base64)
		if err != nil {
			return err
		}
		data = decoded
	}
	saved, err := c.images.SaveImage(ctx, types.Image{
		UserID:    input.Viewer.ID,
		PurposeID: input.PurposeID,
		FileName:  input.FileName,
		MimeType:  input.MimeType,
		Data:      data,
	})
	if err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = *saved
	}
	return nil
}

// DecodeBase64Payload decodes standard base64, dropping a leading
// "data:<mime>;base64," prefix when present.
func DecodeBase64Payload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, types.Invalid("data", "is not valid base64")
	}
	if len(data) == 0 {
		return nil, types.Invalid("data", "required")
	}
	return data, nil
}

// DeleteImageInput removes an uploaded image.
type DeleteImageInput struct {
	Viewer types.Viewer
	ID     uuid.UUID
}

// Type implements gocommand.Message.
func (DeleteImageInput) Type() string {
	return "command.image.delete"
}

// Validate implements gocommand.Message.
func (input DeleteImageInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.ID == uuid.Nil {
		return ErrIDRequired
	}
	return nil
}

// DeleteImageCommand deletes one of the viewer's images.
type DeleteImageCommand struct {
	images types.ImageRepository
	owner  ownerGuard
}

// NewDeleteImageCommand constructs the handler.
func NewDeleteImageCommand(cfg WorklogCommandConfig) *DeleteImageCommand {
	return &DeleteImageCommand{
		images: cfg.Images,
		owner:  newOwnerGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[DeleteImageInput] = (*DeleteImageCommand)(nil)

// Execute deletes the image.
func (c *DeleteImageCommand) Execute(ctx context.Context, input DeleteImageInput) error {
	if c.images == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.owner.enforce(ctx, input.Viewer, input.ID); err != nil {
		return err
	}
	if _, err := ownImages(ctx, c.images, input.Viewer, []uuid.UUID{input.ID}); err != nil {
		return err
	}
	return c.images.DeleteImage(ctx, input.ID)
}
