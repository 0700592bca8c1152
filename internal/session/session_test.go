package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/conversation"
	"studymate/internal/domain"
	"studymate/internal/prompt"
	"studymate/internal/retriever"
)

type fakeLoader struct {
	docs map[string]*domain.Document
}

func (f *fakeLoader) Process(path string) (*domain.Document, error) {
	doc, ok := f.docs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

type fakeGenerator struct {
	reply    string
	err      error
	block    bool
	requests []domain.GenerationRequest
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) last() domain.GenerationRequest { return f.requests[len(f.requests)-1] }

var animals = &domain.Document{
	FileName:   "animals.txt",
	Chunks:     []string{"cats are mammals", "dogs are mammals", "rocks are minerals"},
	ChunkCount: 3,
}

func newSession(t *testing.T, g *fakeGenerator, opts ...Option) *Session {
	t.Helper()
	prompts, err := prompt.NewBuilder(nil)
	require.NoError(t, err)
	loader := &fakeLoader{docs: map[string]*domain.Document{
		"animals.txt": animals,
		"other.txt": {
			FileName:   "other.txt",
			Chunks:     []string{"goroutines are cheap"},
			ChunkCount: 1,
		},
	}}
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	opts = append([]Option{WithTopK(1), WithClock(func() time.Time { return fixed })}, opts...)
	return New(loader, retriever.New(0, zerolog.Nop()), g, prompts, conversation.NewWindow(10), zerolog.Nop(), opts...)
}

func TestOperationsRequireDocument(t *testing.T) {
	s := newSession(t, &fakeGenerator{reply: "x"})

	_, err := s.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, domain.ErrNoDocument)
	_, err = s.Summarize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDocument)
	_, err = s.Review(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDocument)
	_, err = s.Progress()
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestChat_MarksRetrievedChunksRead(t *testing.T) {
	g := &fakeGenerator{reply: "Cats are indeed mammals."}
	s := newSession(t, g)
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	out, err := s.Chat(context.Background(), "are cats mammals")
	require.NoError(t, err)
	assert.Equal(t, "Cats are indeed mammals.", out)

	req := g.last()
	assert.Equal(t, domain.KindChat, req.Kind)
	assert.Equal(t, "cats are mammals", req.Context)
	assert.Contains(t, req.SystemPrompt, "cats are mammals")
	assert.Equal(t, "are cats mammals", req.Message)
	assert.Empty(t, req.History)

	p, err := s.Progress()
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReadChunks)
	assert.Equal(t, 3, p.TotalChunks)
	assert.Equal(t, 1, p.QuestionsAsked)
	assert.InDelta(t, 33.33, p.ProgressPercentage, 1e-9)

	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Content: "are cats mammals"},
		{Role: domain.RoleAssistant, Content: "Cats are indeed mammals."},
	}, s.History())
}

func TestChat_ReadSetIsMonotonic(t *testing.T) {
	s := newSession(t, &fakeGenerator{reply: "ok"})
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	prev := 0
	for _, q := range []string{"cats", "rocks minerals", "cats", "dogs"} {
		_, err := s.Chat(context.Background(), q)
		require.NoError(t, err)
		p, err := s.Progress()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.ReadChunks, prev)
		prev = p.ReadChunks
	}
	assert.Equal(t, 3, prev)
}

func TestChat_GenerationFailureLeavesWindowUntouched(t *testing.T) {
	g := &fakeGenerator{reply: "first"}
	s := newSession(t, g)
	_, err := s.Load("animals.txt")
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), "cats")
	require.NoError(t, err)

	g.err = errors.New("connection reset")
	_, err = s.Chat(context.Background(), "dogs")
	require.ErrorIs(t, err, domain.ErrGeneration)

	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.False(t, ge.Retryable)
	assert.Equal(t, domain.KindChat, ge.Kind)
	assert.Len(t, s.History(), 2)

	// progress still counts the attempted turn
	p, err := s.Progress()
	require.NoError(t, err)
	assert.Equal(t, 2, p.QuestionsAsked)
}

func TestChat_TimeoutIsRetryable(t *testing.T) {
	s := newSession(t, &fakeGenerator{block: true}, WithTimeout(20*time.Millisecond))
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	_, err = s.Chat(context.Background(), "cats")
	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.True(t, ge.Retryable)
	assert.Empty(t, s.History())
}

func TestChat_HistoryIsPassedToGenerator(t *testing.T) {
	g := &fakeGenerator{reply: "a"}
	s := newSession(t, g)
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	_, err = s.Chat(context.Background(), "q1")
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), "q2")
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Content: "q1"},
		{Role: domain.RoleAssistant, Content: "a"},
	}, g.last().History)
}

func TestSummarize_UsesWholeDocument(t *testing.T) {
	g := &fakeGenerator{reply: "# Summary"}
	s := newSession(t, g)
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	out, err := s.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "# Summary", out)

	req := g.last()
	assert.Equal(t, domain.KindSummarize, req.Kind)
	assert.Equal(t, "cats are mammals\ndogs are mammals\nrocks are minerals", req.Context)

	records := s.Summaries()
	require.Len(t, records, 1)
	assert.Equal(t, "# Summary", records[0].Content)

	p, err := s.Progress()
	require.NoError(t, err)
	assert.Equal(t, 1, p.SummariesCount)
	require.NotNil(t, p.LastSummaryTime)
	assert.Nil(t, p.LastReviewTime)
}

func TestReview_OnlyReadChunksInOrder(t *testing.T) {
	g := &fakeGenerator{reply: "review"}
	s := newSession(t, g)
	_, err := s.Load("animals.txt")
	require.NoError(t, err)

	_, err = s.Review(context.Background())
	require.ErrorIs(t, err, domain.ErrNothingToReview)

	_, err = s.Chat(context.Background(), "rocks minerals")
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), "cats")
	require.NoError(t, err)

	_, err = s.Review(context.Background())
	require.NoError(t, err)
	req := g.last()
	assert.Equal(t, domain.KindReview, req.Kind)
	assert.Equal(t, "cats are mammals\nrocks are minerals", req.Context)

	p, err := s.Progress()
	require.NoError(t, err)
	assert.NotNil(t, p.LastReviewTime)
}

func TestLoad_ReplacesProgressKeepsPreviousOnFailure(t *testing.T) {
	s := newSession(t, &fakeGenerator{reply: "ok"})
	_, err := s.Load("animals.txt")
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), "cats")
	require.NoError(t, err)

	_, err = s.Load("missing.txt")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "animals.txt", s.Document().FileName)
	p, err := s.Progress()
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReadChunks)

	_, err = s.Load("other.txt")
	require.NoError(t, err)
	p, err = s.Progress()
	require.NoError(t, err)
	assert.Equal(t, "other.txt", p.FileName)
	assert.Equal(t, 0, p.ReadChunks)
	assert.Equal(t, 0, p.QuestionsAsked)
}
