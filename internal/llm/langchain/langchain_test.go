package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"studymate/internal/domain"
)

type fakeModel struct {
	messages []llms.MessageContent
	options  int
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = len(options)
	return f.resp, f.err
}

func TestGenerate_MapsRoles(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "answer"}}}}
	g := newWithModel(fake, Config{Temperature: 0.7, MaxTokens: 4000, TopP: 0.95}, zerolog.Nop())

	out, err := g.Generate(context.Background(), domain.GenerationRequest{
		SystemPrompt: "sys",
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "q1"},
			{Role: domain.RoleAssistant, Content: "a1"},
		},
		Message: "q2",
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, 3, fake.options)

	require.Len(t, fake.messages, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, fake.messages[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.messages[3].Role)
	assert.Equal(t, llms.TextContent{Text: "q2"}, fake.messages[3].Parts[0])
}

func TestGenerate_WrapsErrors(t *testing.T) {
	g := newWithModel(&fakeModel{err: errors.New("API returned unexpected status code: 429")}, Config{}, zerolog.Nop())
	_, err := g.Generate(context.Background(), domain.GenerationRequest{Kind: domain.KindSummarize})
	require.ErrorIs(t, err, domain.ErrGeneration)

	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.True(t, ge.Retryable)
	assert.Equal(t, domain.KindSummarize, ge.Kind)

	g = newWithModel(&fakeModel{resp: &llms.ContentResponse{}}, Config{}, zerolog.Nop())
	_, err = g.Generate(context.Background(), domain.GenerationRequest{})
	require.True(t, errors.As(err, &ge))
	assert.False(t, ge.Retryable)
}

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("STUDYMATE_EMPTY_KEY", "")
	_, err := New(Config{APIKeyEnv: "STUDYMATE_EMPTY_KEY"}, zerolog.Nop())
	assert.Error(t, err)
}
