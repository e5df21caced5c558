package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Text handles plain text and markdown files, and provides the
// best-effort byte decoding used as a last resort for files no other
// backend could read.
type Text struct {
	logger *slog.Logger
}

func NewText(logger *slog.Logger) *Text {
	return &Text{logger: logger}
}

func (t *Text) Name() string    { return "text" }
func (t *Text) Available() bool { return true }

func (t *Text) CanHandle(ext string) bool {
	switch ext {
	case "txt", "text", "md", "markdown":
		return true
	}
	return false
}

func (t *Text) Extract(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Result{Text: DecodeBytes(data)}, nil
}

// DecodeBytes turns raw bytes into usable text: valid UTF-8 passes
// through, anything else is decoded as Windows-1252, the common case
// for legacy office exports.
func DecodeBytes(data []byte) string {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			// Keep whatever is salvageable.
			text = strings.ToValidUTF8(string(data), "")
		} else {
			text = string(decoded)
		}
	}
	return normalizeText(text)
}

// normalizeText unifies line endings and strips trailing blank space
// while preserving paragraph structure.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
