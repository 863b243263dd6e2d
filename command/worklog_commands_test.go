package command

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func ownerViewer() types.Viewer {
	return types.Viewer{ID: uuid.New(), OrganizationID: uuid.New()}
}

func TestSavePurposeCommand_CreateAndUpdate(t *testing.T) {
	store := newMemoryWorklog()
	viewer := ownerViewer()
	cfg := store.config()

	var format types.ReportFormat
	require.NoError(t, NewSaveFormatCommand(cfg).Execute(context.Background(), SaveFormatInput{
		Viewer:  viewer,
		Name:    "Daily",
		Content: "## Done\n## Next",
		Result:  &format,
	}))

	var purpose types.Purpose
	require.NoError(t, NewSavePurposeCommand(cfg).Execute(context.Background(), SavePurposeInput{
		Viewer:   viewer,
		Name:     "Project A",
		FormatID: &format.ID,
		Result:   &purpose,
	}))
	require.NotEqual(t, uuid.Nil, purpose.ID)
	require.Equal(t, viewer.ID, purpose.UserID)

	require.NoError(t, NewSavePurposeCommand(cfg).Execute(context.Background(), SavePurposeInput{
		Viewer:      viewer,
		ID:          purpose.ID,
		Name:        "Project A2",
		Description: "renamed",
		Result:      &purpose,
	}))
	require.Equal(t, "Project A2", store.purposes[purpose.ID].Name)
}

func TestSavePurposeCommand_RejectsForeignFormat(t *testing.T) {
	store := newMemoryWorklog()
	owner := ownerViewer()
	intruder := ownerViewer()
	cfg := store.config()

	var format types.ReportFormat
	require.NoError(t, NewSaveFormatCommand(cfg).Execute(context.Background(), SaveFormatInput{
		Viewer: owner, Name: "Daily", Content: "x", Result: &format,
	}))

	err := NewSavePurposeCommand(cfg).Execute(context.Background(), SavePurposeInput{
		Viewer:   intruder,
		Name:     "Mine",
		FormatID: &format.ID,
	})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Empty(t, store.purposes)
}

func TestDeleteCommands_RequireOwnership(t *testing.T) {
	store := newMemoryWorklog()
	owner := ownerViewer()
	intruder := ownerViewer()
	cfg := store.config()

	var purpose types.Purpose
	require.NoError(t, NewSavePurposeCommand(cfg).Execute(context.Background(), SavePurposeInput{
		Viewer: owner, Name: "Folder", Result: &purpose,
	}))
	var report types.Report
	require.NoError(t, NewSaveReportCommand(cfg).Execute(context.Background(), SaveReportInput{
		Viewer: owner, PurposeID: purpose.ID, Content: "did things", Result: &report,
	}))

	require.ErrorIs(t, NewDeleteReportCommand(cfg).Execute(context.Background(), DeleteReportInput{Viewer: intruder, ID: report.ID}), types.ErrForbidden)
	require.ErrorIs(t, NewDeletePurposeCommand(cfg).Execute(context.Background(), DeletePurposeInput{Viewer: intruder, ID: purpose.ID}), types.ErrForbidden)
	require.Empty(t, store.deleted)

	require.NoError(t, NewDeleteReportCommand(cfg).Execute(context.Background(), DeleteReportInput{Viewer: owner, ID: report.ID}))
	require.NoError(t, NewDeletePurposeCommand(cfg).Execute(context.Background(), DeletePurposeInput{Viewer: owner, ID: purpose.ID}))
	require.Equal(t, []uuid.UUID{report.ID, purpose.ID}, store.deleted)

	err := NewDeletePurposeCommand(cfg).Execute(context.Background(), DeletePurposeInput{Viewer: owner, ID: purpose.ID})
	require.ErrorIs(t, err, types.ErrPurposeNotFound)
	require.ErrorIs(t, NewDeletePurposeCommand(cfg).Execute(context.Background(), DeletePurposeInput{Viewer: owner}), ErrIDRequired)
}

func TestSaveReportCommand_AttachesImages(t *testing.T) {
	store := newMemoryWorklog()
	owner := ownerViewer()
	cfg := store.config()

	var purpose types.Purpose
	require.NoError(t, NewSavePurposeCommand(cfg).Execute(context.Background(), SavePurposeInput{
		Viewer: owner, Name: "Folder", Result: &purpose,
	}))
	var img types.Image
	require.NoError(t, NewUploadImageCommand(cfg).Execute(context.Background(), UploadImageInput{
		Viewer:    owner,
		FileName:  "board.png",
		MimeType:  "image/png",
		Data:      []byte{0x89, 'P', 'N', 'G'},
		PurposeID: &purpose.ID,
		Result:    &img,
	}))

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var report types.Report
	require.NoError(t, NewSaveReportCommand(cfg).Execute(context.Background(), SaveReportInput{
		Viewer:     owner,
		PurposeID:  purpose.ID,
		Title:      "May 1",
		Content:    "whiteboard session",
		ReportDate: date,
		ImageIDs:   []uuid.UUID{img.ID, img.ID},
		Result:     &report,
	}))
	require.Len(t, report.Images, 1)
	require.Equal(t, img.ID, report.Images[0].ID)
	require.Equal(t, []uuid.UUID{img.ID}, store.attached[report.ID])

	err := NewSaveReportCommand(cfg).Execute(context.Background(), SaveReportInput{
		Viewer:    owner,
		PurposeID: purpose.ID,
		Content:   "missing image",
		ImageIDs:  []uuid.UUID{uuid.New()},
	})
	require.ErrorIs(t, err, types.ErrImageNotFound)

	err = NewSaveReportCommand(cfg).Execute(context.Background(), SaveReportInput{
		Viewer:    ownerViewer(),
		PurposeID: purpose.ID,
		Content:   "not my folder",
	})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Len(t, store.reports, 1)
}

func TestUploadImageCommand_Base64(t *testing.T) {
	store := newMemoryWorklog()
	owner := ownerViewer()
	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	var img types.Image
	require.NoError(t, NewUploadImageCommand(store.config()).Execute(context.Background(), UploadImageInput{
		Viewer:   owner,
		FileName: "photo.jpg",
		MimeType: "image/jpeg",
		Base64:   payload,
		Result:   &img,
	}))
	require.Equal(t, []byte("jpeg-bytes"), store.images[img.ID].Data)

	err := NewUploadImageCommand(store.config()).Execute(context.Background(), UploadImageInput{
		Viewer:   owner,
		MimeType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "mime_type", verr.Field)
}

func TestDecodeBase64Payload(t *testing.T) {
	data, err := DecodeBase64Payload(base64.StdEncoding.EncodeToString([]byte("abc")))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)

	data, err = DecodeBase64Payload("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")))
	require.NoError(t, err)
	require.Equal(t, []byte("png"), data)

	_, err = DecodeBase64Payload("not base64!!")
	require.Error(t, err)

	_, err = DecodeBase64Payload("")
	require.Error(t, err)
}

func TestDeleteImageCommand_Ownership(t *testing.T) {
	store := newMemoryWorklog()
	owner := ownerViewer()
	var img types.Image
	require.NoError(t, NewUploadImageCommand(store.config()).Execute(context.Background(), UploadImageInput{
		Viewer: owner, MimeType: "image/gif", Data: []byte("GIF89a"), Result: &img,
	}))

	err := NewDeleteImageCommand(store.config()).Execute(context.Background(), DeleteImageInput{Viewer: ownerViewer(), ID: img.ID})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.NoError(t, NewDeleteImageCommand(store.config()).Execute(context.Background(), DeleteImageInput{Viewer: owner, ID: img.ID}))
	require.Empty(t, store.images)
}
