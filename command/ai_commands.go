package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-worklog/llm"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// AICommandConfig wires the generator-backed commands.
type AICommandConfig struct {
	Generator   types.TextGenerator
	Purposes    types.PurposeRepository
	Formats     types.FormatRepository
	Reports     types.ReportRepository
	Images      types.ImageRepository
	Profiles    types.ProfileRepository
	FeatureGate featuregate.FeatureGate
	ScopeGuard  scope.Guard
	HistorySize int
	Language    string
	Clock       types.Clock
	Logger      types.Logger
}

type aiDeps struct {
	generator types.TextGenerator
	gate      featuregate.FeatureGate
	owner     ownerGuard
	history   int
	language  string
	clock     types.Clock
	logger    types.Logger
}

func newAIDeps(cfg AICommandConfig) aiDeps {
	history := cfg.HistorySize
	if history <= 0 {
		history = llm.DefaultHistorySize
	}
	return aiDeps{
		generator: cfg.Generator,
		gate:      cfg.FeatureGate,
		owner:     newOwnerGuard(cfg.ScopeGuard),
		history:   history,
		language:  strings.TrimSpace(cfg.Language),
		clock:     safeClock(cfg.Clock),
		logger:    safeLogger(cfg.Logger),
	}
}

// begin runs the checks shared by every AI command: viewer present, feature
// enabled, generator configured, policy satisfied.
func (d aiDeps) begin(ctx context.Context, viewer types.Viewer, feature string) error {
	if viewer.IsZero() {
		return ErrViewerRequired
	}
	if err := requireFeature(ctx, d.gate, feature, viewer); err != nil {
		return err
	}
	if d.generator == nil {
		return types.ErrGeneratorUnavailable
	}
	return d.owner.enforce(ctx, viewer, uuid.Nil)
}

func (d aiDeps) pastReports(ctx context.Context, reports types.ReportRepository, purposeID uuid.UUID) ([]llm.PastReport, error) {
	list, err := reports.ListReports(ctx, types.ReportFilter{PurposeID: purposeID, Limit: d.history})
	if err != nil {
		return nil, err
	}
	out := make([]llm.PastReport, 0, len(list))
	for _, report := range list {
		out = append(out, llm.PastReport{Date: report.ReportDate, Content: report.Content})
	}
	return out, nil
}

// GenerateReportInput asks for a drafted report.
type GenerateReportInput struct {
	Viewer         types.Viewer
	PurposeID      uuid.UUID
	FormatID       *uuid.UUID
	CurrentContent string
	ImageIDs       []uuid.UUID
	Images         []types.InlineImage
	Result         *string
}

// Type implements gocommand.Message.
func (GenerateReportInput) Type() string {
	return "command.ai.report.generate"
}

// Validate implements gocommand.Message.
func (input GenerateReportInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.PurposeID == uuid.Nil {
		return ErrPurposeRequired
	}
	for _, img := range input.Images {
		if !strings.HasPrefix(strings.ToLower(img.MimeType), "image/") {
			return types.Invalid("images", "must be image types")
		}
	}
	return nil
}

// GenerateReportCommand drafts a report from the folder's template and
// history, the user's input and their writing style notes.
type GenerateReportCommand struct {
	deps     aiDeps
	purposes types.PurposeRepository
	formats  types.FormatRepository
	reports  types.ReportRepository
	images   types.ImageRepository
	profiles types.ProfileRepository
}

// NewGenerateReportCommand constructs the handler.
func NewGenerateReportCommand(cfg AICommandConfig) *GenerateReportCommand {
	return &GenerateReportCommand{
		deps:     newAIDeps(cfg),
		purposes: cfg.Purposes,
		formats:  cfg.Formats,
		reports:  cfg.Reports,
		images:   cfg.Images,
		profiles: cfg.Profiles,
	}
}

var _ gocommand.Commander[GenerateReportInput] = (*GenerateReportCommand)(nil)

// Execute renders the draft prompt and returns the generated text on Result.
// Without an explicit format the folder's default format is used.
func (c *GenerateReportCommand) Execute(ctx context.Context, input GenerateReportInput) error {
	if c.purposes == nil || c.formats == nil || c.reports == nil || c.images == nil || c.profiles == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.deps.begin(ctx, input.Viewer, FeatureAIDraft); err != nil {
		return err
	}
	purpose, err := ownPurpose(ctx, c.purposes, input.Viewer, input.PurposeID)
	if err != nil {
		return err
	}

	formatID := input.FormatID
	if formatID == nil || *formatID == uuid.Nil {
		formatID = purpose.FormatID
	}
	formatContent := ""
	if formatID != nil && *formatID != uuid.Nil {
		format, err := ownFormat(ctx, c.formats, input.Viewer, *formatID)
		switch {
		case err == nil:
			formatContent = format.Content
		case types.IsNotFound(err):
			c.deps.logger.Debug("draft format missing", "format_id", formatID.String())
		default:
			return err
		}
	}

	history, err := c.deps.pastReports(ctx, c.reports, purpose.ID)
	if err != nil {
		return err
	}
	profile, err := c.profiles.GetProfile(ctx, input.Viewer.ID)
	if err != nil {
		return err
	}
	stored, err := ownImages(ctx, c.images, input.Viewer, input.ImageIDs)
	if err != nil {
		return err
	}

	prompt, err := llm.RenderDraftPrompt(llm.DraftPromptData{
		Format:      formatContent,
		Input:       input.CurrentContent,
		Style:       profile.Personal,
		PastReports: history,
		Today:       now(c.deps.clock),
		Language:    c.deps.language,
	})
	if err != nil {
		return err
	}
	inline := make([]types.InlineImage, 0, len(stored)+len(input.Images))
	for _, img := range stored {
		inline = append(inline, types.InlineImage{MimeType: img.MimeType, Data: img.Data})
	}
	inline = append(inline, input.Images...)

	text, err := c.deps.generator.Generate(ctx, types.GenerationRequest{Prompt: prompt, Images: inline})
	if err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = text
	}
	return nil
}

// ExtractInsightsInput asks for insights on a report.
type ExtractInsightsInput struct {
	Viewer    types.Viewer
	PurposeID uuid.UUID
	Content   string
	Result    *string
}

// Type implements gocommand.Message.
func (ExtractInsightsInput) Type() string {
	return "command.ai.insights.extract"
}

// Validate implements gocommand.Message.
func (input ExtractInsightsInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if input.PurposeID == uuid.Nil {
		return ErrPurposeRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return ErrContentRequired
	}
	return nil
}

// ExtractInsightsCommand generates three insights and stores them on the
// folder.
type ExtractInsightsCommand struct {
	deps     aiDeps
	purposes types.PurposeRepository
	reports  types.ReportRepository
}

// NewExtractInsightsCommand constructs the handler.
func NewExtractInsightsCommand(cfg AICommandConfig) *ExtractInsightsCommand {
	return &ExtractInsightsCommand{
		deps:     newAIDeps(cfg),
		purposes: cfg.Purposes,
		reports:  cfg.Reports,
	}
}

var _ gocommand.Commander[ExtractInsightsInput] = (*ExtractInsightsCommand)(nil)

// Execute generates, persists and returns the insights.
func (c *ExtractInsightsCommand) Execute(ctx context.Context, input ExtractInsightsInput) error {
	if c.purposes == nil || c.reports == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.deps.begin(ctx, input.Viewer, FeatureAIInsights); err != nil {
		return err
	}
	purpose, err := ownPurpose(ctx, c.purposes, input.Viewer, input.PurposeID)
	if err != nil {
		return err
	}
	history, err := c.deps.pastReports(ctx, c.reports, purpose.ID)
	if err != nil {
		return err
	}
	prompt, err := llm.RenderInsightsPrompt(llm.InsightsPromptData{
		Content:     input.Content,
		PastReports: history,
		Language:    c.deps.language,
	})
	if err != nil {
		return err
	}
	text, err := c.deps.generator.Generate(ctx, types.GenerationRequest{Prompt: prompt})
	if err != nil {
		return err
	}
	if err := c.purposes.SetInsights(ctx, purpose.ID, text); err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = text
	}
	return nil
}

// AnalyzeStyleInput asks for an analysis of the viewer's writing style.
type AnalyzeStyleInput struct {
	Viewer  types.Viewer
	Content string
	Save    bool
	Result  *string
}

// Type implements gocommand.Message.
func (AnalyzeStyleInput) Type() string {
	return "command.ai.style.analyze"
}

// Validate implements gocommand.Message.
func (input AnalyzeStyleInput) Validate() error {
	if input.Viewer.IsZero() {
		return ErrViewerRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return ErrContentRequired
	}
	return nil
}

// AnalyzeStyleCommand describes the writing style of a sample text and
// optionally stores it as the viewer's personal notes.
type AnalyzeStyleCommand struct {
	deps     aiDeps
	profiles types.ProfileRepository
}

// NewAnalyzeStyleCommand constructs the handler.
func NewAnalyzeStyleCommand(cfg AICommandConfig) *AnalyzeStyleCommand {
	return &AnalyzeStyleCommand{
		deps:     newAIDeps(cfg),
		profiles: cfg.Profiles,
	}
}

var _ gocommand.Commander[AnalyzeStyleInput] = (*AnalyzeStyleCommand)(nil)

// Execute returns the analysis on Result.
func (c *AnalyzeStyleCommand) Execute(ctx context.Context, input AnalyzeStyleInput) error {
	if c.profiles == nil {
		return types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.deps.begin(ctx, input.Viewer, FeatureAIStyle); err != nil {
		return err
	}
	prompt, err := llm.RenderStylePrompt(llm.StylePromptData{
		Content:  input.Content,
		Language: c.deps.language,
	})
	if err != nil {
		return err
	}
	text, err := c.deps.generator.Generate(ctx, types.GenerationRequest{Prompt: prompt})
	if err != nil {
		return err
	}
	if input.Save {
		if _, err := c.profiles.UpdateProfile(ctx, types.ProfileMutation{
			UserID:   input.Viewer.ID,
			Personal: &text,
		}); err != nil {
			return err
		}
	}
	if input.Result != nil {
		*input.Result = text
	}
	return nil
}
