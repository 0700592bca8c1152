package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default chunk size in characters.
const DefaultChunkSize = 4000

const paragraphSeparator = "\n\n"

// Assembler packs paragraphs into chunks of at most chunkSize characters.
// A paragraph is never split; a paragraph longer than chunkSize becomes its own chunk.
// Accumulation state survives across Add calls so page-structured sources can feed
// one page at a time.
type Assembler struct {
	chunkSize int
	acc       strings.Builder
	accLen    int
	chunks    []string
}

// NewAssembler creates an assembler. Non-positive sizes fall back to DefaultChunkSize.
func NewAssembler(chunkSize int) *Assembler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Assembler{chunkSize: chunkSize}
}

// ChunkSize returns the configured chunk size.
func (a *Assembler) ChunkSize() int { return a.chunkSize }

// Add appends paragraphs, flushing completed chunks as the size limit is reached.
func (a *Assembler) Add(paragraphs ...string) {
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pLen := utf8.RuneCountInString(p)
		if a.accLen+pLen > a.chunkSize && a.accLen > 0 {
			a.flush()
		}
		a.acc.WriteString(p)
		a.acc.WriteString(paragraphSeparator)
		a.accLen += pLen + utf8.RuneCountInString(paragraphSeparator)
		if a.accLen >= a.chunkSize {
			a.flush()
		}
	}
}

// Finish flushes the remainder and returns all chunks produced so far.
func (a *Assembler) Finish() []string {
	a.flush()
	out := a.chunks
	a.chunks = nil
	return out
}

func (a *Assembler) flush() {
	if chunk := strings.TrimSpace(a.acc.String()); chunk != "" {
		a.chunks = append(a.chunks, chunk)
	}
	a.acc.Reset()
	a.accLen = 0
}

// Pack is a convenience wrapper for a single-unit source.
func Pack(paragraphs []string, chunkSize int) []string {
	a := NewAssembler(chunkSize)
	a.Add(paragraphs...)
	return a.Finish()
}

var (
	repeatedPunctRe = regexp.MustCompile(`(。+|！+|？+|\.+|!+|\?+)`)
	terminalRe      = regexp.MustCompile(`[。.!！?？]$`)
)

// Normalize cleans assembled chunks: whitespace runs become one space, a run of the
// same terminal punctuation mark collapses to one, and a chunk without a sentence
// terminator at the end gets a period. Chunks that end up empty are dropped.
func Normalize(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(whitespaceRe.ReplaceAllString(c, " "))
		c = repeatedPunctRe.ReplaceAllStringFunc(c, func(run string) string {
			r, _ := utf8.DecodeRuneInString(run)
			return string(r)
		})
		if c == "" {
			continue
		}
		if !terminalRe.MatchString(c) {
			c += "."
		}
		out = append(out, c)
	}
	return out
}
