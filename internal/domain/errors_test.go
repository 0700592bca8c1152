package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationError(t *testing.T) {
	err := fmt.Errorf("chat: %w", &GenerationError{Kind: KindReview, Retryable: true, Err: context.DeadlineExceeded})

	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrRetrieval)
	assert.Contains(t, err.Error(), "review generation failed (retryable)")

	var ge *GenerationError
	assert.True(t, errors.As(err, &ge))
	assert.Equal(t, KindReview, ge.Kind)
}

func TestRequestKindString(t *testing.T) {
	assert.Equal(t, "chat", KindChat.String())
	assert.Equal(t, "summarize", KindSummarize.String())
	assert.Equal(t, "unknown", RequestKind(42).String())
}
