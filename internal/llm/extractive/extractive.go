// Package extractive implements an offline generator that answers with sentences
// taken from the request context.
package extractive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studymate/internal/domain"
)

// Generator answers every request with an extractive summary of its context.
type Generator struct {
	summarizer   domain.Summarizer
	maxSentences int
}

// New creates an extractive generator. maxSentences <= 0 lets the summarizer pick.
func New(s domain.Summarizer, maxSentences int) *Generator {
	return &Generator{summarizer: s, maxSentences: maxSentences}
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "extractive" }

// Generate summarises req.Context. Review requests are prefixed with a heading
// so the output reads as a list of points to revisit.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.GenerationError{Kind: req.Kind, Retryable: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	if strings.TrimSpace(req.Context) == "" {
		return "", &domain.GenerationError{Kind: req.Kind, Err: errors.New("empty context")}
	}
	summary, err := g.summarizer.Summarize(req.Context, g.maxSentences)
	if err != nil {
		return "", &domain.GenerationError{Kind: req.Kind, Err: err}
	}
	switch req.Kind {
	case domain.KindSummarize:
		return "# Summary\n\n" + summary, nil
	case domain.KindReview:
		return fmt.Sprintf("# Key points to review\n\n%s", summary), nil
	default:
		return summary, nil
	}
}
