package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-worklog/pkg/types"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// GenAIConfig configures the Gemini-backed generator.
type GenAIConfig struct {
	APIKey string
	Model  string
}

// GenAIGenerator implements types.TextGenerator over google.golang.org/genai.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

var _ types.TextGenerator = (*GenAIGenerator)(nil)

// NewGenAIGenerator creates the Gemini client.
func NewGenAIGenerator(ctx context.Context, cfg GenAIConfig) (*GenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *GenAIGenerator) Model() string {
	return g.model
}

// Generate sends the prompt with its inline images and returns the text of
// the first candidate.
func (g *GenAIGenerator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, BuildContents(req), nil)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("llm: empty response")
	}
	return text, nil
}

// BuildContents converts a request into a single user turn: the prompt part
// followed by one inline part per image.
func BuildContents(req types.GenerationRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, img := range req.Images {
		if len(img.Data) == 0 {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
