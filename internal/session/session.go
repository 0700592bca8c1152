// Package session holds the learning session: the active document, the
// conversation window and the reading progress derived from chat turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studymate/internal/conversation"
	"studymate/internal/domain"
	"studymate/internal/prompt"
	"studymate/internal/retriever"
)

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 30 * time.Second

// Loader turns a file path into a processed document.
type Loader interface {
	Process(path string) (*domain.Document, error)
}

// Retriever selects the chunks relevant to a query.
type Retriever interface {
	Retrieve(query string, chunks []string, topK int) (retriever.Result, error)
}

type progress struct {
	read        map[int]struct{}
	questions   int
	start       time.Time
	lastSummary *time.Time
	lastReview  *time.Time
}

// Session is not safe for concurrent use; callers serialise access.
type Session struct {
	loader    Loader
	retriever Retriever
	generator domain.Generator
	prompts   *prompt.Builder
	window    *conversation.Window
	topK      int
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time

	doc       *domain.Document
	progress  progress
	summaries []domain.SummaryRecord
}

// Option customises a Session.
type Option func(*Session)

// WithTopK sets how many chunks are retrieved per chat turn.
func WithTopK(k int) Option {
	return func(s *Session) { s.topK = k }
}

// WithTimeout sets the per-call generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session with no document loaded.
func New(loader Loader, r Retriever, g domain.Generator, prompts *prompt.Builder, window *conversation.Window, log zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		loader:    loader,
		retriever: r,
		generator: g,
		prompts:   prompts,
		window:    window,
		topK:      retriever.DefaultTopK,
		timeout:   DefaultTimeout,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load processes path and makes it the active document with fresh progress.
// On error the previous document and progress are kept.
func (s *Session) Load(path string) (*domain.Document, error) {
	s.log.Info().Str("path", path).Msg("loading document")
	doc, err := s.loader.Process(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("document load failed")
		return nil, err
	}
	s.doc = doc
	s.progress = progress{read: map[int]struct{}{}, start: s.now()}
	s.log.Info().Str("file", doc.FileName).Int("chunks", doc.ChunkCount).Msg("document loaded")
	return doc, nil
}

// Document returns the active document or nil.
func (s *Session) Document() *domain.Document { return s.doc }

// History returns the conversation window contents, oldest first.
func (s *Session) History() []domain.Turn { return s.window.Render() }

// Chat answers message using the chunks most relevant to it.
func (s *Session) Chat(ctx context.Context, message string) (string, error) {
	if s.doc == nil {
		return "", domain.ErrNoDocument
	}
	res, err := s.retriever.Retrieve(message, s.doc.Chunks, s.topK)
	if err != nil {
		return "", err
	}
	s.progress.questions++
	for i, chunk := range s.doc.Chunks {
		if strings.Contains(res.Context, chunk) {
			s.progress.read[i] = struct{}{}
		}
	}
	s.log.Debug().Int("read", len(s.progress.read)).Ints("selected", res.Indices).Msg("chat context selected")

	return s.generate(ctx, domain.KindChat, message, res.Context)
}

// Summarize generates a summary of the whole document and records it.
func (s *Session) Summarize(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", domain.ErrNoDocument
	}
	summary, err := s.generate(ctx, domain.KindSummarize, prompt.SummarizeMessage, strings.Join(s.doc.Chunks, "\n"))
	if err != nil {
		return "", err
	}
	now := s.now()
	s.summaries = append(s.summaries, domain.SummaryRecord{
		Time:           now,
		Content:        summary,
		ChunksCovered:  len(s.progress.read),
		QuestionsAsked: s.progress.questions,
	})
	s.progress.lastSummary = &now
	return summary, nil
}

// Review generates review suggestions from the chunks read so far.
func (s *Session) Review(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", domain.ErrNoDocument
	}
	read := s.readIndices()
	if len(read) == 0 {
		return "", domain.ErrNothingToReview
	}
	parts := make([]string, len(read))
	for i, idx := range read {
		parts[i] = s.doc.Chunks[idx]
	}
	review, err := s.generate(ctx, domain.KindReview, prompt.ReviewMessage, strings.Join(parts, "\n"))
	if err != nil {
		return "", err
	}
	now := s.now()
	s.progress.lastReview = &now
	return review, nil
}

// Progress reports reading progress for the active document.
func (s *Session) Progress() (domain.ProgressReport, error) {
	if s.doc == nil {
		return domain.ProgressReport{}, domain.ErrNoDocument
	}
	total := len(s.doc.Chunks)
	read := len(s.progress.read)
	pct := 0.0
	if total > 0 {
		pct = math.Round(float64(read)/float64(total)*100*100) / 100
	}
	return domain.ProgressReport{
		FileName:           s.doc.FileName,
		TotalChunks:        total,
		ReadChunks:         read,
		ProgressPercentage: pct,
		QuestionsAsked:     s.progress.questions,
		SummariesCount:     len(s.summaries),
		StartTime:          s.progress.start,
		LastSummaryTime:    s.progress.lastSummary,
		LastReviewTime:     s.progress.lastReview,
	}, nil
}

// Summaries returns a copy of the summary log.
func (s *Session) Summaries() []domain.SummaryRecord {
	out := make([]domain.SummaryRecord, len(s.summaries))
	copy(out, s.summaries)
	return out
}

func (s *Session) readIndices() []int {
	out := make([]int, 0, len(s.progress.read))
	for i := range s.progress.read {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// generate runs one bounded generation call and records the exchange in the
// window only when it succeeds.
func (s *Session) generate(ctx context.Context, kind domain.RequestKind, message, docContext string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := domain.GenerationRequest{
		Kind:         kind,
		SystemPrompt: s.prompts.Build(kind, docContext),
		History:      s.window.Render(),
		Message:      message,
		Context:      docContext,
	}
	start := s.now()
	reply, err := s.generator.Generate(ctx, req)
	if err != nil {
		err = asGenerationError(ctx, kind, err)
		s.log.Error().Err(err).Str("kind", kind.String()).Str("generator", s.generator.Name()).Msg("generation failed")
		return "", err
	}
	s.window.Append(message, reply)
	s.log.Info().Str("kind", kind.String()).Int("reply_len", len(reply)).Dur("took", s.now().Sub(start)).Msg("generation complete")
	return reply, nil
}

func asGenerationError(ctx context.Context, kind domain.RequestKind, err error) error {
	var ge *domain.GenerationError
	if errors.As(err, &ge) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !ge.Retryable {
			return &domain.GenerationError{Kind: kind, Retryable: true, Err: ge.Err}
		}
		return err
	}
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &domain.GenerationError{Kind: kind, Retryable: timedOut, Err: fmt.Errorf("%s: %w", kind, err)}
}
