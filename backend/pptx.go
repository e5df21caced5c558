package backend

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/hazyhaar/docstruct/document"
)

// PPTX is the slide-table strategy for presentations: slide text is
// collected in slide order, and every a:tbl graphic frame becomes a
// candidate table. A slide that fails to parse is logged and skipped.
type PPTX struct {
	logger *slog.Logger
}

func NewPPTX(logger *slog.Logger) *PPTX {
	return &PPTX{logger: logger}
}

func (p *PPTX) Name() string    { return "pptx_slide" }
func (p *PPTX) Available() bool { return true }

func (p *PPTX) CanHandle(ext string) bool { return ext == "pptx" }

func (p *PPTX) Extract(ctx context.Context, path string) (*Result, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var slides []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return numericSuffix(slides[i].Name) < numericSuffix(slides[j].Name)
	})

	var text strings.Builder
	var tables []document.Table
	for i, slide := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readXML(slide)
		if err != nil {
			p.logger.Warn("slide skipped", "slide", slide.Name, "err", err)
			continue
		}

		slideText := p.slideText(doc)
		if slideText != "" {
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(slideText)
		}

		for _, tblEl := range doc.FindElements("//tbl") {
			rows := p.tableRows(tblEl)
			rows = trimEmptyRows(rows)
			if len(rows) < 2 {
				continue
			}
			tbl := document.Table{
				Headers:    rows[0],
				Rows:       rows[1:],
				Page:       i + 1,
				Index:      len(tables),
				Method:     p.Name(),
				Confidence: 0.85,
				Status:     document.StatusUnvalidated,
			}
			tbl.Normalize()
			tables = append(tables, tbl)
		}
	}

	return &Result{Text: text.String(), Tables: tables}, nil
}

// slideText joins the text runs of every paragraph outside tables.
func (p *PPTX) slideText(doc *etree.Document) string {
	var sb strings.Builder
	for _, para := range doc.FindElements("//p") {
		if insideTable(para) {
			continue
		}
		var line strings.Builder
		for _, t := range para.FindElements(".//t") {
			line.WriteString(t.Text())
		}
		txt := strings.TrimSpace(line.String())
		if txt == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(txt)
	}
	return sb.String()
}

func (p *PPTX) tableRows(tbl *etree.Element) [][]string {
	var rows [][]string
	for _, tr := range tbl.FindElements("tr") {
		var row []string
		for _, tc := range tr.FindElements("tc") {
			var cell strings.Builder
			for _, t := range tc.FindElements(".//t") {
				if cell.Len() > 0 {
					cell.WriteByte(' ')
				}
				cell.WriteString(t.Text())
			}
			row = append(row, strings.TrimSpace(cell.String()))
		}
		rows = append(rows, row)
	}
	return rows
}

func insideTable(el *etree.Element) bool {
	for parent := el.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Tag == "tbl" {
			return true
		}
	}
	return false
}
