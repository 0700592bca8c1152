package server

import (
	"bytes"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// renderMarkdown converts generated markdown to HTML for browser clients.
// Raw HTML in the input is not passed through.
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
