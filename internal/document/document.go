// Package document extracts plain text from uploaded resume files.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions without an extractor
var ErrUnsupportedFormat = errors.New("unsupported file format")

type extractor func(data []byte) (string, error)

var extractors = map[string]extractor{
	"pdf":  extractPDF,
	"docx": extractDOCX,
	"doc":  extractDOCX,
	"txt":  extractPlain,
	"md":   extractPlain,
	"html": extractHTML,
	"htm":  extractHTML,
}

// Ext returns the lowercase extension of filename without the dot
func Ext(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// Supported reports whether filename has an accepted extension
func Supported(filename string) bool {
	_, ok := extractors[Ext(filename)]
	return ok
}

// Formats lists the accepted extensions in sorted order
func Formats() []string {
	out := make([]string, 0, len(extractors))
	for ext := range extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract returns the trimmed text of a document, choosing the parser by extension
func Extract(data []byte, filename string) (string, error) {
	ext := Ext(filename)
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: .%s (allowed: %s)", ErrUnsupportedFormat, ext, strings.Join(Formats(), ", "))
	}

	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ext, err)
	}
	return strings.TrimSpace(text), nil
}

// joinLines trims every line and drops the empty ones
func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
