package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"studymate/internal/domain"
)

// DefaultEncodings is the order in which flat text files are decoded.
var DefaultEncodings = []string{"utf-8", "gbk", "gb18030", "latin1"}

var replacementChar = []byte(string(utf8.RuneError))

// decodeText tries each encoding in order and returns the first clean decode.
// A decode is clean when it introduces no replacement characters.
func decodeText(data []byte, encodings []string) (string, string, error) {
	hadReplacement := bytes.Contains(data, replacementChar)
	for _, name := range encodings {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "utf-8" || name == "utf8" {
			if utf8.Valid(data) {
				return string(data), "utf-8", nil
			}
			continue
		}
		enc, err := lookupEncoding(name)
		if err != nil {
			return "", "", err
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if !hadReplacement && bytes.Contains(out, replacementChar) {
			continue
		}
		return string(out), name, nil
	}
	return "", "", fmt.Errorf("%w: tried %s", domain.ErrDecode, strings.Join(encodings, ", "))
}

// lookupEncoding resolves an encoding name. Latin-1 is ISO-8859-1, which maps
// every byte; htmlindex would substitute windows-1252 and reject 0x81 and friends.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "latin1", "latin-1", "l1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}
