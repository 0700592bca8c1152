// Package langchain adapts a langchaingo OpenAI-compatible model to domain.Generator.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"studymate/internal/domain"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Config configures the langchaingo backed generator.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Generator calls a chat model through langchaingo.
type Generator struct {
	llm  contentGenerator
	opts []llms.CallOption
	log  zerolog.Logger
}

// New creates a generator against an OpenAI-compatible endpoint.
func New(cfg Config, log zerolog.Logger) (*Generator, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	clientOpts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(key, "Bearer ")),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		clientOpts = append(clientOpts, openai.WithModel(cfg.Model))
	}
	llm, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain client: %w", err)
	}
	return newWithModel(llm, cfg, log), nil
}

func newWithModel(llm contentGenerator, cfg Config, log zerolog.Logger) *Generator {
	opts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.TopP > 0 {
		opts = append(opts, llms.WithTopP(cfg.TopP))
	}
	return &Generator{llm: llm, opts: opts, log: log}
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "langchain" }

// Generate sends the request as system, history and human messages.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	messages := make([]llms.MessageContent, 0, len(req.History)+2)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.SystemPrompt))
	for _, t := range req.History {
		role := schema.ChatMessageTypeHuman
		if t.Role == domain.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, t.Content))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.Message))

	g.log.Debug().Str("kind", req.Kind.String()).Int("messages", len(messages)).Msg("generating content")
	res, err := g.llm.GenerateContent(ctx, messages, g.opts...)
	if err != nil {
		return "", &domain.GenerationError{Kind: req.Kind, Retryable: retryable(ctx, err), Err: err}
	}
	if res == nil || len(res.Choices) == 0 {
		return "", &domain.GenerationError{Kind: req.Kind, Err: errors.New("no choices returned")}
	}
	return res.Choices[0].Content, nil
}

func retryable(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, code := range []string{"429", "500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
