package domain

import "context"

// GenerationRequest carries everything a Generator needs for one call.
// Context is the document text the system prompt was built from.
type GenerationRequest struct {
	Kind         RequestKind
	SystemPrompt string
	History      []Turn
	Message      string
	Context      string
}

// Generator produces assistant text for a request.
// Implementations return a *GenerationError on failure.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
