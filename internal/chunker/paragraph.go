package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SplitParagraphs splits raw text into paragraph units. Blocks separated by a
// blank line are split first; each block has its whitespace collapsed and is
// then split after a sentence terminator that is followed by a capitalised word.
// The capitalisation rule only works for scripts with letter case.
func SplitParagraphs(text string) []string {
	var out []string
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(whitespaceRe.ReplaceAllString(block, " "))
		if block == "" {
			continue
		}
		for _, p := range splitSentences(block) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// splitSentences cuts a whitespace-collapsed block after every ". X" style boundary.
// The terminator stays with the text before it.
func splitSentences(block string) []string {
	var parts []string
	start := 0
	for i, r := range block {
		if !isSplitTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		rest := block[end:]
		if !strings.HasPrefix(rest, " ") {
			continue
		}
		next, _ := utf8.DecodeRuneInString(rest[1:])
		if !unicode.IsUpper(next) {
			continue
		}
		parts = append(parts, block[start:end])
		start = end + 1
	}
	return append(parts, block[start:])
}

func isSplitTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
