package ingest

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"studymate/internal/chunker"
)

// Extractor feeds the text of one file into an assembler.
type Extractor interface {
	Extract(path string, asm *chunker.Assembler) error
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string, asm *chunker.Assembler) error

func (f ExtractorFunc) Extract(path string, asm *chunker.Assembler) error { return f(path, asm) }

// textExtractor reads a flat text file (plain or markdown) in one pass. Markdown
// is kept verbatim so markup, inline HTML and link targets stay searchable.
type textExtractor struct {
	encodings []string
}

func (e textExtractor) Extract(path string, asm *chunker.Assembler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content, _, err := decodeText(data, e.encodings)
	if err != nil {
		return err
	}
	asm.Add(chunker.SplitParagraphs(content)...)
	return nil
}

// pdfExtractor feeds each page separately so paragraphs never join across a page
// break, while the assembler keeps accumulating into the same chunk.
type pdfExtractor struct{}

func (pdfExtractor) Extract(path string, asm *chunker.Assembler) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		asm.Add(chunker.SplitParagraphs(pageText)...)
	}
	return nil
}
