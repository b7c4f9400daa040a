package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/pkg/apperrors"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("ai provider is not configured")

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, systemRole string) (string, error)
}

type geminiGenerator struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// NewGenerator returns a Gemini generator, or a generator that always fails
// with ErrNotConfigured when no API key is set.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg.AI.APIKey == "" {
		logger.Warn("AI API key is empty, AI features disabled")
		return disabledGenerator{}, nil
	}

	model := cfg.AI.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.AI.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.AI.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}
	return NewModelGenerator(llm, model, timeout), nil
}

// NewModelGenerator wraps any langchaingo model.
func NewModelGenerator(model llms.Model, name string, timeout time.Duration) Generator {
	return &geminiGenerator{model: model, name: name, timeout: timeout}
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt, systemRole string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]llms.MessageContent, 0, 2)
	if systemRole != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemRole))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		logger.CtxWithError(ctx, "AI generation failed", err, "model", g.name)
		return "", apperrors.ErrExternalService(err, apperrors.ServiceAI)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", apperrors.ErrExternalService(errors.New("empty completion"), apperrors.ServiceAI)
	}

	logger.CtxDebug(ctx, "AI generation finished", "model", g.name, "duration", time.Since(start))
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, string, string) (string, error) {
	return "", apperrors.ErrExternalService(ErrNotConfigured, apperrors.ServiceAI)
}
