package backend

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// CSV is the delimited-text strategy. It sniffs the delimiter from
// the first line and yields one candidate table per file.
type CSV struct {
	logger *slog.Logger
}

func NewCSV(logger *slog.Logger) *CSV {
	return &CSV{logger: logger}
}

func (c *CSV) Name() string    { return "csv" }
func (c *CSV) Available() bool { return true }

func (c *CSV) CanHandle(ext string) bool {
	return ext == "csv" || ext == "tsv"
}

func (c *CSV) Extract(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := DecodeBytes(data)
	if text == "" {
		return &Result{}, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text, filepath.Ext(path))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Result{Text: text}, nil
	}

	tbl := document.Table{
		Title:      tableTitleFromPath(path),
		Headers:    records[0],
		Rows:       records[1:],
		Method:     c.Name(),
		Confidence: 0.9,
		Status:     document.StatusUnvalidated,
	}
	tbl.Normalize()

	return &Result{Text: text, Tables: []document.Table{tbl}}, nil
}

// sniffDelimiter picks the delimiter with the most occurrences on the
// first line; .tsv defaults to tab.
func sniffDelimiter(text, ext string) rune {
	if strings.EqualFold(ext, ".tsv") {
		return '\t'
	}
	first := text
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	best, bestCount := ',', strings.Count(first, ",")
	for _, cand := range []rune{';', '\t', '|'} {
		if n := strings.Count(first, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// tableTitleFromPath derives a human-readable title from the file
// name, with separators turned into spaces.
func tableTitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
