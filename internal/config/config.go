package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// IngestConfig configures text extraction.
type IngestConfig struct {
	Encodings []string `yaml:"encodings"`
}

// CacheConfig configures the processed document cache.
type CacheConfig struct {
	Dir           string `yaml:"dir"`
	MemoryTTLSecs int    `yaml:"memory_ttl_secs"`
}

// RetrieverConfig configures chunk retrieval.
type RetrieverConfig struct {
	TopK        int `yaml:"top_k"`
	MaxFeatures int `yaml:"max_features"`
}

// ConversationConfig configures the conversation window.
type ConversationConfig struct {
	MaxHistoryPairs int `yaml:"max_history_pairs"`
}

// OpenAIGeneratorConfig holds configuration for OpenAI-compatible chat endpoints.
type OpenAIGeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`
	MaxRetries  int     `yaml:"max_retries"`
}

// GeneratorConfig selects and configures the text generator implementation.
type GeneratorConfig struct {
	Type        string                 `yaml:"type"`
	TimeoutSecs int                    `yaml:"timeout_secs"`
	OpenAI      *OpenAIGeneratorConfig `yaml:"openai,omitempty"`
	Prompts     map[string]string      `yaml:"prompts,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	UploadDir   string `yaml:"upload_dir"`
	ChunkDir    string `yaml:"chunk_dir"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker      ChunkerConfig      `yaml:"chunker"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Cache        CacheConfig        `yaml:"cache"`
	Retriever    RetrieverConfig    `yaml:"retriever"`
	Conversation ConversationConfig `yaml:"conversation"`
	Generator    GeneratorConfig    `yaml:"generator"`
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/studymate/config.yaml.
// If neither exists, it writes defaults to ~/.config/studymate/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studymate", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = 4000
	}
	if len(cfg.Ingest.Encodings) == 0 {
		cfg.Ingest.Encodings = []string{"utf-8", "gbk", "gb18030", "latin1"}
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "cache"
	}
	if cfg.Cache.MemoryTTLSecs < 0 {
		cfg.Cache.MemoryTTLSecs = 0
	}
	if cfg.Retriever.TopK <= 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.Retriever.MaxFeatures <= 0 {
		cfg.Retriever.MaxFeatures = 5000
	}
	if cfg.Conversation.MaxHistoryPairs <= 0 {
		cfg.Conversation.MaxHistoryPairs = 10
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "openai"
	}
	if cfg.Generator.TimeoutSecs <= 0 {
		cfg.Generator.TimeoutSecs = 30
	}
	if cfg.Generator.Type == "openai" || cfg.Generator.Type == "langchain" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIGeneratorConfig{}
		}
		o := cfg.Generator.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "gpt-4o-mini"
		}
		if o.Temperature == 0 {
			o.Temperature = 0.7
		}
		if o.MaxTokens == 0 {
			o.MaxTokens = 4000
		}
		if o.TopP == 0 {
			o.TopP = 0.95
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 2
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "uploads"
	}
	if cfg.Server.ChunkDir == "" {
		cfg.Server.ChunkDir = filepath.Join("uploads", "chunks")
	}
	if cfg.Server.BodyLimitMB <= 0 {
		cfg.Server.BodyLimitMB = 16
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
