package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ronaldv/minime-agent/internal/config"
	"github.com/ronaldv/minime-agent/internal/domain"
	"google.golang.org/genai"
)

// GenAIClient implements domain.CompletionClient on top of Gemini,
// either through the Gemini API (API key) or Vertex AI (project/region).
type GenAIClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenAIClient builds the completion client from config. A missing
// API key and missing project/location is a hard configuration error.
func NewGenAIClient(ctx context.Context, cfg *config.Config) (*GenAIClient, error) {
	var clientCfg *genai.ClientConfig

	switch {
	case cfg.GeminiAPIKey != "":
		clientCfg = &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case cfg.GCPProject != "" && cfg.GCPLocation != "":
		clientCfg = &genai.ClientConfig{
			Project:  cfg.GCPProject,
			Location: cfg.GCPLocation,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, fmt.Errorf("MINIME_GEMINI_API_KEY or MINIME_GCP_PROJECT and MINIME_GCP_LOCATION must be set")
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GenAIClient{
		client:      client,
		model:       cfg.ModelName,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Complete implements domain.CompletionClient. System messages are
// folded into the system instruction; everything else becomes contents
// in order.
func (c *GenAIClient) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompleteOptions,
) (string, error) {
	var systemParts []string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("no user content to send")
	}

	temp := c.temperature
	if opts.Temperature != 0 {
		temp = opts.Temperature
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if len(systemParts) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}

	res, err := c.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("genai returned empty text")
	}

	return text, nil
}
