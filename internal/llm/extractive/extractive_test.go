package extractive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/domain"
	"studymate/internal/summarizer"
)

func TestGenerate_UsesContext(t *testing.T) {
	g := New(summarizer.NewFrequencySummarizer(), 3)
	out, err := g.Generate(context.Background(), domain.GenerationRequest{
		Kind:    domain.KindChat,
		Message: "what about cats?",
		Context: "Cats are mammals.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cats are mammals.", out)

	out, err = g.Generate(context.Background(), domain.GenerationRequest{Kind: domain.KindReview, Context: "Cats are mammals."})
	require.NoError(t, err)
	assert.Equal(t, "# Key points to review\n\nCats are mammals.", out)
}

func TestGenerate_Errors(t *testing.T) {
	g := New(summarizer.NewFrequencySummarizer(), 3)

	_, err := g.Generate(context.Background(), domain.GenerationRequest{Context: "  "})
	assert.ErrorIs(t, err, domain.ErrGeneration)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	_, err = g.Generate(ctx, domain.GenerationRequest{Context: "Cats are mammals."})
	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.True(t, ge.Retryable)
}
