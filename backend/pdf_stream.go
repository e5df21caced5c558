package backend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// PDFStream is the borderless/stream strategy: it infers table columns
// from text alignment alone. When the x-starts of items on several
// consecutive lines cluster into the same column positions, those
// lines are read as a table even without any ruling lines.
type PDFStream struct {
	logger *slog.Logger
}

func NewPDFStream(logger *slog.Logger) *PDFStream {
	return &PDFStream{logger: logger}
}

func (p *PDFStream) Name() string    { return "pdf_stream" }
func (p *PDFStream) Available() bool { return true }

func (p *PDFStream) CanHandle(ext string) bool { return ext == "pdf" }

func (p *PDFStream) Extract(ctx context.Context, path string) (*Result, error) {
	pdfCtx, err := openPDF(path)
	if err != nil {
		return nil, err
	}

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
		for _, tbl := range p.alignedTables(lines, pageNr, len(tables)) {
			tables = append(tables, tbl)
		}
	}

	return &Result{Tables: tables}, nil
}

// alignedTables scans for maximal runs of lines sharing column
// alignment. A run qualifies as a table when it spans at least three
// lines and at least two columns.
func (p *PDFStream) alignedTables(lines []textLine, page, nextIndex int) []document.Table {
	const xTol = 6.0

	var tables []document.Table
	var run []textLine

	flush := func() {
		defer func() { run = nil }()
		if len(run) < 3 {
			return
		}
		cols := columnPositions(run, xTol)
		if len(cols) < 2 {
			return
		}
		rows := make([][]string, len(run))
		for i, ln := range run {
			rows[i] = assignToColumns(ln, cols, xTol)
		}
		rows = trimEmptyRows(rows)
		if len(rows) < 2 {
			return
		}
		tbl := document.Table{
			Headers:    rows[0],
			Rows:       rows[1:],
			Page:       page,
			Index:      nextIndex + len(tables),
			Method:     p.Name(),
			Confidence: 0.7,
			Status:     document.StatusUnvalidated,
		}
		tbl.Normalize()
		tables = append(tables, tbl)
	}

	for _, ln := range lines {
		if len(ln.items) >= 2 && (len(run) == 0 || aligned(run[len(run)-1], ln, xTol)) {
			run = append(run, ln)
			continue
		}
		flush()
		if len(ln.items) >= 2 {
			run = append(run, ln)
		}
	}
	flush()
	return tables
}

// aligned reports whether two lines share most of their item x-starts.
func aligned(a, b textLine, tol float64) bool {
	if len(a.items) != len(b.items) {
		return false
	}
	matched := 0
	for _, ia := range a.items {
		for _, ib := range b.items {
			if abs(ia.x-ib.x) <= tol {
				matched++
				break
			}
		}
	}
	return matched >= len(a.items)-1
}

// columnPositions clusters the x-starts of all items in the run.
func columnPositions(run []textLine, tol float64) []float64 {
	var xs []float64
	for _, ln := range run {
		for _, it := range ln.items {
			xs = append(xs, it.x)
		}
	}
	return cluster(xs, tol)
}

// assignToColumns places each item of a line into its nearest column.
func assignToColumns(ln textLine, cols []float64, tol float64) []string {
	cells := make([]string, len(cols))
	for _, it := range ln.items {
		best := -1
		bestDist := tol * 2
		for ci, cx := range cols {
			if d := abs(it.x - cx); d < bestDist {
				best = ci
				bestDist = d
			}
		}
		if best < 0 {
			continue
		}
		if cells[best] != "" {
			cells[best] += " "
		}
		cells[best] += strings.TrimSpace(it.text)
	}
	return cells
}
