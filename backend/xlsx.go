package backend

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/hazyhaar/docstruct/document"
)

// XLSX is the sheet-based strategy for spreadsheets: every sheet in
// the workbook yields one candidate table, with the first populated
// row as headers. A sheet that fails to parse is logged and skipped.
type XLSX struct {
	logger *slog.Logger
}

func NewXLSX(logger *slog.Logger) *XLSX {
	return &XLSX{logger: logger}
}

func (x *XLSX) Name() string    { return "xlsx_sheet" }
func (x *XLSX) Available() bool { return true }

func (x *XLSX) CanHandle(ext string) bool { return ext == "xlsx" || ext == "xlsm" }

func (x *XLSX) Extract(ctx context.Context, path string) (*Result, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	shared, err := x.sharedStrings(files["xl/sharedStrings.xml"])
	if err != nil {
		x.logger.Warn("shared strings unreadable, inline values only", "path", path, "err", err)
	}
	sheetNames := x.sheetNames(files["xl/workbook.xml"])

	var sheetPaths []string
	for name := range files {
		if strings.HasPrefix(name, "xl/worksheets/sheet") && strings.HasSuffix(name, ".xml") {
			sheetPaths = append(sheetPaths, name)
		}
	}
	sort.Slice(sheetPaths, func(i, j int) bool {
		return numericSuffix(sheetPaths[i]) < numericSuffix(sheetPaths[j])
	})

	var text strings.Builder
	var tables []document.Table
	for i, sp := range sheetPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := x.sheetRows(files[sp], shared)
		if err != nil {
			x.logger.Warn("sheet skipped", "sheet", sp, "err", err)
			continue
		}
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}
		title := fmt.Sprintf("Sheet %d", i+1)
		if i < len(sheetNames) {
			title = sheetNames[i]
		}
		tbl := document.Table{
			Title:      title,
			Headers:    rows[0],
			Rows:       rows[1:],
			Index:      len(tables),
			Method:     x.Name(),
			Confidence: 0.9,
			Status:     document.StatusUnvalidated,
		}
		tbl.Normalize()
		tables = append(tables, tbl)

		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(title)
	}

	return &Result{Text: text.String(), Tables: tables}, nil
}

func (x *XLSX) sharedStrings(f *zip.File) ([]string, error) {
	if f == nil {
		return nil, nil
	}
	doc, err := readXML(f)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, si := range doc.FindElements("//si") {
		var sb strings.Builder
		for _, t := range si.FindElements(".//t") {
			sb.WriteString(t.Text())
		}
		out = append(out, sb.String())
	}
	return out, nil
}

func (x *XLSX) sheetNames(f *zip.File) []string {
	if f == nil {
		return nil
	}
	doc, err := readXML(f)
	if err != nil {
		return nil
	}
	var names []string
	for _, sheet := range doc.FindElements("//sheet") {
		names = append(names, sheet.SelectAttrValue("name", ""))
	}
	return names
}

func (x *XLSX) sheetRows(f *zip.File, shared []string) ([][]string, error) {
	if f == nil {
		return nil, fmt.Errorf("missing sheet file")
	}
	doc, err := readXML(f)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, rowEl := range doc.FindElements("//row") {
		var row []string
		for _, c := range rowEl.FindElements("c") {
			col := columnIndex(c.SelectAttrValue("r", ""))
			val := cellValue(c, shared)
			// Fill skipped columns so positions stay aligned.
			for col >= 0 && len(row) < col {
				row = append(row, "")
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellValue(c *etree.Element, shared []string) string {
	v := c.FindElement("v")
	if v == nil {
		// Inline strings live under is/t.
		if t := c.FindElement("is/t"); t != nil {
			return t.Text()
		}
		return ""
	}
	if c.SelectAttrValue("t", "") == "s" {
		idx := 0
		for _, ch := range v.Text() {
			if ch < '0' || ch > '9' {
				return v.Text()
			}
			idx = idx*10 + int(ch-'0')
		}
		if idx < len(shared) {
			return shared[idx]
		}
		return ""
	}
	return v.Text()
}

// columnIndex converts an A1-style reference to a zero-based column
// index; -1 when the reference is absent.
func columnIndex(ref string) int {
	col := 0
	seen := false
	for _, ch := range ref {
		if ch >= 'A' && ch <= 'Z' {
			col = col*26 + int(ch-'A'+1)
			seen = true
		} else {
			break
		}
	}
	if !seen {
		return -1
	}
	return col - 1
}

// numericSuffix extracts the trailing number of an archive member name
// (before the .xml extension), so sheet10.xml orders after sheet2.xml
// and slide10.xml after slide2.xml.
func numericSuffix(name string) int {
	base := strings.TrimSuffix(name, ".xml")
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0
	}
	return n
}

func readXML(f *zip.File) (*etree.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return doc, nil
}
