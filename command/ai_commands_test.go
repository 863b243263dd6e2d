package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type aiFixture struct {
	store     *memoryWorklog
	profiles  *fakeProfiles
	generator *stubGenerator
	gate      *stubFeatureGate
	viewer    types.Viewer
	purpose   *types.Purpose
	format    *types.ReportFormat
}

func newAIFixture(t *testing.T) *aiFixture {
	t.Helper()
	store := newMemoryWorklog()
	profiles := newFakeProfiles()
	owner := profiles.add(types.Profile{OrganizationID: uuid.New(), Personal: "Uses bullet points."})
	viewer := types.ViewerFromProfile(owner)

	format, err := store.formatRepo().CreateFormat(context.Background(), types.ReportFormat{
		UserID: viewer.ID, Name: "Daily", Content: "## Today\n## Tomorrow",
	})
	require.NoError(t, err)
	purpose, err := store.purposeRepo().CreatePurpose(context.Background(), types.Purpose{
		UserID: viewer.ID, Name: "Project", FormatID: &format.ID,
	})
	require.NoError(t, err)
	for i, content := range []string{"older entry", "newer entry"} {
		_, err := store.reportRepo().CreateReport(context.Background(), types.Report{
			UserID:     viewer.ID,
			PurposeID:  purpose.ID,
			Content:    content,
			ReportDate: time.Date(2024, 4, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	return &aiFixture{
		store:     store,
		profiles:  profiles,
		generator: &stubGenerator{text: "generated"},
		gate:      &stubFeatureGate{enabled: true},
		viewer:    viewer,
		purpose:   purpose,
		format:    format,
	}
}

func (f *aiFixture) config() AICommandConfig {
	return AICommandConfig{
		Generator:   f.generator,
		Purposes:    f.store.purposeRepo(),
		Formats:     f.store.formatRepo(),
		Reports:     f.store.reportRepo(),
		Images:      f.store.imageRepo(),
		Profiles:    f.profiles,
		FeatureGate: f.gate,
		Language:    "Japanese",
		Clock:       fixedClock{t: time.Date(2024, 4, 3, 9, 0, 0, 0, time.UTC)},
	}
}

func TestGenerateReportCommand_BuildsPrompt(t *testing.T) {
	f := newAIFixture(t)
	img, err := f.store.imageRepo().SaveImage(context.Background(), types.Image{
		UserID: f.viewer.ID, MimeType: "image/png", Data: []byte("png"),
	})
	require.NoError(t, err)

	var out string
	err = NewGenerateReportCommand(f.config()).Execute(context.Background(), GenerateReportInput{
		Viewer:         f.viewer,
		PurposeID:      f.purpose.ID,
		CurrentContent: "fixed the login bug",
		ImageIDs:       []uuid.UUID{img.ID},
		Images:         []types.InlineImage{{MimeType: "image/jpeg", Data: []byte("jpg")}},
		Result:         &out,
	})

	require.NoError(t, err)
	require.Equal(t, "generated", out)
	require.Equal(t, []string{FeatureAIDraft}, f.gate.keys)
	require.Len(t, f.generator.requests, 1)
	req := f.generator.requests[0]
	require.Contains(t, req.Prompt, "## Today")
	require.Contains(t, req.Prompt, "fixed the login bug")
	require.Contains(t, req.Prompt, "Uses bullet points.")
	require.Contains(t, req.Prompt, "2024-04-03")
	require.Contains(t, req.Prompt, "Japanese")
	require.Less(t, strings.Index(req.Prompt, "newer entry"), strings.Index(req.Prompt, "older entry"))
	require.Len(t, req.Images, 2)
	require.Equal(t, "image/png", req.Images[0].MimeType)
	require.Equal(t, "image/jpeg", req.Images[1].MimeType)
}

func TestGenerateReportCommand_MissingFormatDegrades(t *testing.T) {
	f := newAIFixture(t)
	missing := uuid.New()
	var out string

	err := NewGenerateReportCommand(f.config()).Execute(context.Background(), GenerateReportInput{
		Viewer:    f.viewer,
		PurposeID: f.purpose.ID,
		FormatID:  &missing,
		Result:    &out,
	})

	require.NoError(t, err)
	require.Contains(t, f.generator.requests[0].Prompt, "(no format)")
}

func TestGenerateReportCommand_Guards(t *testing.T) {
	f := newAIFixture(t)

	err := NewGenerateReportCommand(f.config()).Execute(context.Background(), GenerateReportInput{Viewer: f.viewer})
	require.ErrorIs(t, err, ErrPurposeRequired)

	err = NewGenerateReportCommand(f.config()).Execute(context.Background(), GenerateReportInput{
		Viewer:    types.Viewer{ID: uuid.New(), OrganizationID: uuid.New()},
		PurposeID: f.purpose.ID,
	})
	require.ErrorIs(t, err, types.ErrForbidden)

	f.gate.enabled = false
	err = NewGenerateReportCommand(f.config()).Execute(context.Background(), GenerateReportInput{
		Viewer:    f.viewer,
		PurposeID: f.purpose.ID,
	})
	require.ErrorIs(t, err, types.ErrFeatureDisabled)

	f.gate.enabled = true
	cfg := f.config()
	cfg.Generator = nil
	err = NewGenerateReportCommand(cfg).Execute(context.Background(), GenerateReportInput{
		Viewer:    f.viewer,
		PurposeID: f.purpose.ID,
	})
	require.ErrorIs(t, err, types.ErrGeneratorUnavailable)
	require.Empty(t, f.generator.requests)
}

func TestExtractInsightsCommand_PersistsInsights(t *testing.T) {
	f := newAIFixture(t)
	f.generator.text = "1. ship\n2. test\n3. rest"
	var out string

	err := NewExtractInsightsCommand(f.config()).Execute(context.Background(), ExtractInsightsInput{
		Viewer:    f.viewer,
		PurposeID: f.purpose.ID,
		Content:   "today I shipped",
		Result:    &out,
	})

	require.NoError(t, err)
	require.Equal(t, f.generator.text, out)
	require.Equal(t, f.generator.text, f.store.purposes[f.purpose.ID].Insights)
	require.Equal(t, []string{FeatureAIInsights}, f.gate.keys)
	require.Contains(t, f.generator.requests[0].Prompt, "today I shipped")
}

func TestExtractInsightsCommand_GeneratorFailureKeepsInsights(t *testing.T) {
	f := newAIFixture(t)
	f.store.purposes[f.purpose.ID].Insights = "previous"
	f.generator.err = errors.New("quota")

	err := NewExtractInsightsCommand(f.config()).Execute(context.Background(), ExtractInsightsInput{
		Viewer:    f.viewer,
		PurposeID: f.purpose.ID,
		Content:   "x",
	})

	require.Error(t, err)
	require.Equal(t, "previous", f.store.purposes[f.purpose.ID].Insights)
}

func TestAnalyzeStyleCommand(t *testing.T) {
	f := newAIFixture(t)
	f.generator.text = "Concise and direct."
	var out string

	require.NoError(t, NewAnalyzeStyleCommand(f.config()).Execute(context.Background(), AnalyzeStyleInput{
		Viewer:  f.viewer,
		Content: "sample text",
		Result:  &out,
	}))
	require.Equal(t, "Concise and direct.", out)
	require.Equal(t, "Uses bullet points.", f.profiles.profiles[f.viewer.ID].Personal)

	require.NoError(t, NewAnalyzeStyleCommand(f.config()).Execute(context.Background(), AnalyzeStyleInput{
		Viewer:  f.viewer,
		Content: "sample text",
		Save:    true,
	}))
	require.Equal(t, "Concise and direct.", f.profiles.profiles[f.viewer.ID].Personal)

	err := NewAnalyzeStyleCommand(f.config()).Execute(context.Background(), AnalyzeStyleInput{Viewer: f.viewer})
	require.ErrorIs(t, err, ErrContentRequired)
}

func TestFeatureGateErrorPropagates(t *testing.T) {
	f := newAIFixture(t)
	f.gate.err = errors.New("gate offline")

	err := NewAnalyzeStyleCommand(f.config()).Execute(context.Background(), AnalyzeStyleInput{
		Viewer:  f.viewer,
		Content: "x",
	})
	require.EqualError(t, err, "gate offline")
}
