package backend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// PDFGrid is the bordered-table strategy: it reconstructs tables from
// drawn ruling lines. Clustered horizontal and vertical segments form
// a grid; text items fall into cells by position. Pages without grid
// lines produce nothing, which is expected: the stream and text
// strategies cover those.
type PDFGrid struct {
	logger *slog.Logger
}

func NewPDFGrid(logger *slog.Logger) *PDFGrid {
	return &PDFGrid{logger: logger}
}

func (p *PDFGrid) Name() string    { return "pdf_grid" }
func (p *PDFGrid) Available() bool { return true }

func (p *PDFGrid) CanHandle(ext string) bool { return ext == "pdf" }

func (p *PDFGrid) Extract(ctx context.Context, path string) (*Result, error) {
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
		items, segs := scanPage(data)
		if tbl, ok := p.gridTable(items, segs, pageNr, len(tables)); ok {
			tables = append(tables, tbl)
		}
	}

	// This strategy contributes structure, not prose; text comes from
	// the text-layer strategy running alongside.
	return &Result{Tables: tables}, nil
}

// gridTable builds one table per page from its strongest grid. Row
// boundaries come from clustered horizontal line Ys, column boundaries
// from vertical line Xs.
func (p *PDFGrid) gridTable(items []textItem, segs []segment, page, index int) (document.Table, bool) {
	const tol = 3.0

	var ys, xs []float64
	for _, s := range segs {
		if s.horizontal() {
			ys = append(ys, s.y1)
		}
		if s.vertical() {
			xs = append(xs, s.x1)
		}
	}
	rowBounds := cluster(ys, tol)
	colBounds := cluster(xs, tol)
	if len(rowBounds) < 3 || len(colBounds) < 2 {
		return document.Table{}, false
	}

	// Top of page first.
	sort.Sort(sort.Reverse(sort.Float64Slice(rowBounds)))

	nRows := len(rowBounds) - 1
	nCols := len(colBounds) - 1
	grid := make([][]strings.Builder, nRows)
	for i := range grid {
		grid[i] = make([]strings.Builder, nCols)
	}

	filled := 0
	for _, it := range items {
		ri := bandIndexDesc(rowBounds, it.y)
		ci := bandIndexAsc(colBounds, it.x)
		if ri < 0 || ci < 0 {
			continue
		}
		cell := &grid[ri][ci]
		if cell.Len() > 0 {
			cell.WriteByte(' ')
		}
		cell.WriteString(strings.TrimSpace(it.text))
		filled++
	}
	if filled == 0 {
		return document.Table{}, false
	}

	rows := make([][]string, nRows)
	for i := range grid {
		rows[i] = make([]string, nCols)
		for j := range grid[i] {
			rows[i][j] = grid[i][j].String()
		}
	}
	rows = trimEmptyRows(rows)
	if len(rows) < 2 {
		return document.Table{}, false
	}

	tbl := document.Table{
		Headers:    rows[0],
		Rows:       rows[1:],
		Page:       page,
		Index:      index,
		Method:     p.Name(),
		Confidence: 0.9,
		Status:     document.StatusUnvalidated,
	}
	tbl.Normalize()
	return tbl, true
}

// bandIndexDesc locates v between descending boundaries.
func bandIndexDesc(bounds []float64, v float64) int {
	for i := 0; i+1 < len(bounds); i++ {
		if v <= bounds[i] && v >= bounds[i+1] {
			return i
		}
	}
	return -1
}

// bandIndexAsc locates v between ascending boundaries.
func bandIndexAsc(bounds []float64, v float64) int {
	for i := 0; i+1 < len(bounds); i++ {
		if v >= bounds[i] && v <= bounds[i+1] {
			return i
		}
	}
	return -1
}
