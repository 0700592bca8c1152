package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"studymate/internal/domain"
)

// Client is an OpenAI-compatible chat completions client implementing domain.Generator.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	topP        float64
	client      *http.Client
	maxRetries  int
}

// Config configures the OpenAI-compatible chat client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	MaxRetries  int
	HTTPClient  *http.Client
}

// NewClient creates a new chat client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		topP:        cfg.TopP,
		client:      hc,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// Name returns the identifier of this generator implementation.
func (c *Client) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the system prompt, history and message and returns the reply text.
// The deadline of ctx bounds all attempts together.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(req),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		TopP:        c.topP,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", &domain.GenerationError{Kind: req.Kind, Err: err}
	}
	url := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		reply, wait, err := c.do(ctx, url, data)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		var ge *domain.GenerationError
		if errors.As(err, &ge) && !ge.Retryable {
			ge.Kind = req.Kind
			return "", ge
		}
		if ctx.Err() != nil || attempt == c.maxRetries {
			break
		}
		if wait == 0 {
			wait = retryDelay(attempt)
		}
		if err := sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}
	return "", &domain.GenerationError{Kind: req.Kind, Retryable: true, Err: unwrapGeneration(lastErr)}
}

// do performs a single attempt. wait is the server-requested delay, if any.
func (c *Client) do(ctx context.Context, url string, data []byte) (string, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", 0, &domain.GenerationError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", 0, &domain.GenerationError{Retryable: isTimeout(ctx, err), Err: err}
	}
	payload, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var wait time.Duration
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return "", wait, &domain.GenerationError{Retryable: true, Err: fmt.Errorf("openai chat failed: %s", resp.Status)}
	}
	if resp.StatusCode >= 300 {
		return "", 0, &domain.GenerationError{Err: fmt.Errorf("openai chat failed: %s: %s", resp.Status, errorMessage(payload))}
	}
	if err != nil {
		return "", 0, &domain.GenerationError{Retryable: true, Err: err}
	}

	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", 0, &domain.GenerationError{Err: fmt.Errorf("decode chat response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", 0, &domain.GenerationError{Err: errors.New("no choices returned")}
	}
	return out.Choices[0].Message.Content, 0, nil
}

func buildMessages(req domain.GenerationRequest) []chatMessage {
	msgs := make([]chatMessage, 0, len(req.History)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	for _, t := range req.History {
		msgs = append(msgs, chatMessage{Role: string(t.Role), Content: t.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Message})
	return msgs
}

func errorMessage(payload []byte) string {
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err == nil && out.Error != nil {
		return out.Error.Message
	}
	return strings.TrimSpace(string(payload))
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func unwrapGeneration(err error) error {
	var ge *domain.GenerationError
	if errors.As(err, &ge) {
		return ge.Err
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
