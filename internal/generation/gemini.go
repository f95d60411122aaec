package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"alcyxob/flexplan/internal/config"
	"alcyxob/flexplan/internal/prompt"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 90 * time.Second

	jsonMIMEType = "application/json"
)

// ErrMissingAPIKey is returned by NewGeminiClient when no credential was configured.
var ErrMissingAPIKey = errors.New("gemini API key is required")

// contentGenerator is the slice of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient is a Generator backed by the Gemini API.
// It is built explicitly from configuration and shared by injection; there is no package-level client.
type GeminiClient struct {
	models      contentGenerator
	model       string
	temperature *float32
	timeout     time.Duration
}

// NewGeminiClient creates a client from cfg. The API key comes only from cfg.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		log.Printf("ERROR: Failed to create Gemini client: %v", err)
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	log.Printf("Gemini client initialized for model: %s", modelOrDefault(cfg.Model))
	return newGeminiClient(client.Models, cfg), nil
}

func newGeminiClient(models contentGenerator, cfg config.GeminiConfig) *GeminiClient {
	c := &GeminiClient{
		models:  models,
		model:   modelOrDefault(cfg.Model),
		timeout: cfg.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		c.temperature = &t
	}
	return c
}

func modelOrDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

// Generate sends req to Gemini with the schema as a hard output constraint.
func (c *GeminiClient) Generate(ctx context.Context, req prompt.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.RoleHint}}},
		ResponseMIMEType:  jsonMIMEType,
		ResponseSchema:    req.Schema,
		Temperature:       c.temperature,
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Instruction), genCfg)
	if err != nil {
		return "", classify(ctx, req.Persona, err)
	}
	if resp == nil {
		return "", newError(req.Persona, KindEmptyPayload, ErrNoResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", newError(req.Persona, KindServiceFailure,
			fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", newError(req.Persona, KindEmptyPayload, ErrNoResponse)
	}
	return text, nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// classify maps a transport or API error onto a GenerationError kind.
func classify(ctx context.Context, persona string, err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr), errors.As(err, &apiErrPtr):
		return newError(persona, KindServiceFailure, err)
	case ctx.Err() != nil:
		return newError(persona, KindUnreachable, fmt.Errorf("%w: %w", ctx.Err(), err))
	default:
		return newError(persona, KindUnreachable, err)
	}
}
