// Package ingest turns a source file into a chunked Document, consulting the
// document cache before doing any extraction.
package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"studymate/internal/chunker"
	"studymate/internal/domain"
)

// Cache is the subset of the document cache used by the pipeline.
type Cache interface {
	Lookup(path string) (*domain.Document, bool)
	Store(path string, doc *domain.Document) error
}

// Pipeline processes files into Documents.
type Pipeline struct {
	cache      Cache
	chunkSize  int
	extractors map[string]Extractor
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor registers (or replaces) the extractor for a lowercase extension such as ".txt".
func WithExtractor(ext string, e Extractor) Option {
	return func(p *Pipeline) {
		p.extractors[strings.ToLower(ext)] = e
	}
}

// WithEncodings sets the ordered encodings tried for flat text files.
func WithEncodings(encodings []string) Option {
	return func(p *Pipeline) {
		if len(encodings) == 0 {
			return
		}
		p.extractors[".txt"] = textExtractor{encodings: encodings}
		p.extractors[".md"] = textExtractor{encodings: encodings}
	}
}

// WithClock overrides the time source used for ProcessedTime.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline. cache may be nil to disable caching.
func NewPipeline(cache Cache, chunkSize int, log zerolog.Logger, opts ...Option) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	p := &Pipeline{
		cache:     cache,
		chunkSize: chunkSize,
		extractors: map[string]Extractor{
			".pdf": pdfExtractor{},
			".txt": textExtractor{encodings: DefaultEncodings},
			".md":  textExtractor{encodings: DefaultEncodings},
		},
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts, chunks and caches the file at path.
// Errors wrap domain.ErrNotFound, domain.ErrUnsupportedFormat, domain.ErrDecode
// or domain.ErrEmptyContent. Cache write failures are logged and ignored.
func (p *Pipeline) Process(path string) (*domain.Document, error) {
	p.log.Info().Str("path", path).Msg("processing document")

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrNotFound, path)
	}

	if p.cache != nil {
		if doc, ok := p.cache.Lookup(path); ok {
			p.log.Info().Str("path", path).Int("chunks", doc.ChunkCount).Msg("using cached document")
			return doc, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := p.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	asm := chunker.NewAssembler(p.chunkSize)
	if err := extractor.Extract(path, asm); err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	chunks := chunker.Normalize(asm.Finish())
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyContent, path)
	}

	hash, err := fileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c)
	}
	doc := &domain.Document{
		SourcePath:    path,
		FileName:      filepath.Base(path),
		FileExtension: ext,
		Chunks:        chunks,
		ChunkCount:    len(chunks),
		TotalLength:   total,
		ProcessedTime: p.now(),
		ChunkSize:     p.chunkSize,
		FileSizeBytes: info.Size(),
		ContentHash:   hash,
	}

	if p.cache != nil {
		if err := p.cache.Store(path, doc); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("failed to cache document")
		}
	}
	p.log.Info().Str("path", path).Int("chunks", doc.ChunkCount).Msg("document processed")
	return doc, nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
