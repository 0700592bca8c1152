package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studymate/internal/cache"
	"studymate/internal/config"
	"studymate/internal/conversation"
	"studymate/internal/domain"
	"studymate/internal/ingest"
	"studymate/internal/llm/extractive"
	"studymate/internal/llm/langchain"
	"studymate/internal/llm/openai"
	"studymate/internal/prompt"
	"studymate/internal/retriever"
	"studymate/internal/session"
	"studymate/internal/summarizer"
)

func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newPipeline(cfg *config.AppConfig, log zerolog.Logger) *ingest.Pipeline {
	dc := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MemoryTTLSecs)*time.Second, log.With().Str("component", "cache").Logger())
	return ingest.NewPipeline(dc, cfg.Chunker.ChunkSize, log.With().Str("component", "ingest").Logger(),
		ingest.WithEncodings(cfg.Ingest.Encodings))
}

func newGenerator(cfg config.GeneratorConfig, log zerolog.Logger) (domain.Generator, error) {
	switch cfg.Type {
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			TopP:        cfg.OpenAI.TopP,
			MaxRetries:  cfg.OpenAI.MaxRetries,
		})
	case "langchain":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("langchain generator needs the openai section")
		}
		return langchain.New(langchain.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			TopP:        cfg.OpenAI.TopP,
		}, log.With().Str("component", "langchain").Logger())
	case "extractive":
		return extractive.New(summarizer.NewFrequencySummarizer(), summarizer.DefaultMaxSentences), nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func newSession(cfg *config.AppConfig, log zerolog.Logger) (*session.Session, error) {
	gen, err := newGenerator(cfg.Generator, log)
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.NewBuilder(cfg.Generator.Prompts)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("generator", gen.Name()).Msg("generator ready")
	return session.New(
		newPipeline(cfg, log),
		retriever.New(cfg.Retriever.MaxFeatures, log.With().Str("component", "retriever").Logger()),
		gen,
		prompts,
		conversation.NewWindow(cfg.Conversation.MaxHistoryPairs),
		log.With().Str("component", "session").Logger(),
		session.WithTopK(cfg.Retriever.TopK),
		session.WithTimeout(time.Duration(cfg.Generator.TimeoutSecs)*time.Second),
	), nil
}

const logFileName = "studymate.log"

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
