package backend

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/hazyhaar/docstruct/document"
)

// PDFText is the text-layer-plus-geometry strategy. It always supplies
// the raw page text and additionally detects tables from runs of lines
// whose items split into the same columns by whitespace gaps. Its
// reported table confidence is scaled down when the extracted text
// looks like font-encoding garbage.
type PDFText struct {
	logger *slog.Logger
}

func NewPDFText(logger *slog.Logger) *PDFText {
	return &PDFText{logger: logger}
}

func (p *PDFText) Name() string    { return "pdf_text" }
func (p *PDFText) Available() bool { return true }

func (p *PDFText) CanHandle(ext string) bool { return ext == "pdf" }

func (p *PDFText) Extract(ctx context.Context, path string) (*Result, error) {
	pdfCtx, err := openPDF(path)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	var tables []document.Table

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := pageStream(pdfCtx, pageNr)
		if err != nil {
			p.logger.Warn("page skipped", "page", pageNr, "err", err)
			continue
		}
		items, _ := scanPage(data)
		lines := groupIntoLines(items)

		var rendered []string
		for _, ln := range lines {
			rendered = append(rendered, ln.render())
		}
		pageText := strings.Join(rendered, "\n")
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)

		for _, tbl := range p.detectTables(rendered, pageNr, len(tables)) {
			tables = append(tables, tbl)
		}
	}

	full := text.String()
	conf := 0.6 * printableRatio(full)
	for i := range tables {
		tables[i].Confidence = conf
	}

	return &Result{Text: full, Tables: tables}, nil
}

// detectTables finds runs of three or more consecutive lines that all
// split into the same number (>=2) of whitespace-gapped columns.
func (p *PDFText) detectTables(lines []string, page, nextIndex int) []document.Table {
	var tables []document.Table
	var run [][]string

	flush := func() {
		if len(run) >= 3 {
			tbl := document.Table{
				Headers: run[0],
				Rows:    run[1:],
				Page:    page,
				Index:   nextIndex + len(tables),
				Method:  p.Name(),
				Status:  document.StatusUnvalidated,
			}
			tbl.Normalize()
			tables = append(tables, tbl)
		}
		run = nil
	}

	for _, line := range lines {
		cols := splitColumns(line)
		if len(cols) >= 2 && (len(run) == 0 || len(cols) == len(run[0])) {
			run = append(run, cols)
			continue
		}
		flush()
		if len(cols) >= 2 {
			run = append(run, cols)
		}
	}
	flush()
	return tables
}

// splitColumns splits a rendered line on gaps of two or more spaces.
func splitColumns(line string) []string {
	var cols []string
	for _, part := range strings.Split(line, "  ") {
		part = strings.TrimSpace(part)
		if part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

// printableRatio is the share of printable characters in the text,
// excluding private-use and replacement runes. Low values indicate a
// font encoding the lexer could not decode.
func printableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if r >= 0xE000 && r <= 0xF8FF || r == 0xFFFD {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}
