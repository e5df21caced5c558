package backend

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// ODT handles OpenDocument text and spreadsheet files. Both store
// their content in content.xml; text documents contribute headings
// and paragraphs, and every table:table becomes a candidate table.
type ODT struct {
	logger *slog.Logger
}

func NewODT(logger *slog.Logger) *ODT {
	return &ODT{logger: logger}
}

func (o *ODT) Name() string    { return "odt_table" }
func (o *ODT) Available() bool { return true }

func (o *ODT) CanHandle(ext string) bool { return ext == "odt" || ext == "ods" }

func (o *ODT) Extract(ctx context.Context, path string) (*Result, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var contentFile *zip.File
	for _, f := range r.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return nil, fmt.Errorf("content.xml not found in archive")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var (
		text         strings.Builder
		tables       []document.Table
		rows         [][]string
		row          []string
		cellText     strings.Builder
		cellRepeat   int
		curText      strings.Builder
		tableName    string
		inTable      bool
		inCell       bool
		inHeading    bool
		inPara       bool
		headingLevel int
	)

	flushTable := func() {
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			return
		}
		tbl := document.Table{
			Title:      tableName,
			Headers:    rows[0],
			Rows:       rows[1:],
			Index:      len(tables),
			Method:     o.Name(),
			Confidence: 0.85,
			Status:     document.StatusUnvalidated,
		}
		tbl.Normalize()
		tables = append(tables, tbl)
		rows = nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table":
				inTable = true
				tableName = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "name" {
						tableName = attr.Value
					}
				}
			case "table-row":
				if inTable {
					row = row[:0]
				}
			case "table-cell":
				if inTable {
					inCell = true
					cellText.Reset()
					cellRepeat = 1
					for _, attr := range t.Attr {
						if attr.Name.Local == "number-columns-repeated" {
							if n, err := strconv.Atoi(attr.Value); err == nil && n > 1 && n < 256 {
								cellRepeat = n
							}
						}
					}
				}
			case "h":
				inHeading = true
				curText.Reset()
				headingLevel = 1
				for _, attr := range t.Attr {
					if attr.Name.Local == "outline-level" {
						if n, err := strconv.Atoi(attr.Value); err == nil {
							headingLevel = n
						}
					}
				}
			case "p":
				if inCell {
					// Cell paragraphs accumulate into cellText.
					inPara = true
					curText.Reset()
					continue
				}
				inPara = true
				curText.Reset()
			}

		case xml.CharData:
			if inHeading || inPara {
				curText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "h":
				if !inHeading {
					continue
				}
				inHeading = false
				txt := strings.TrimSpace(curText.String())
				if txt == "" {
					continue
				}
				if headingLevel > 6 {
					headingLevel = 6
				}
				text.WriteString(strings.Repeat("#", headingLevel))
				text.WriteByte(' ')
				text.WriteString(txt)
				text.WriteString("\n\n")
			case "p":
				if !inPara {
					continue
				}
				inPara = false
				txt := strings.TrimSpace(curText.String())
				if txt == "" {
					continue
				}
				if inCell {
					if cellText.Len() > 0 {
						cellText.WriteByte(' ')
					}
					cellText.WriteString(txt)
					continue
				}
				text.WriteString(txt)
				text.WriteString("\n\n")
			case "table-cell":
				if inCell {
					inCell = false
					val := strings.TrimSpace(cellText.String())
					for i := 0; i < cellRepeat; i++ {
						row = append(row, val)
					}
				}
			case "table-row":
				if inTable {
					rows = append(rows, append([]string(nil), row...))
				}
			case "table":
				if inTable {
					inTable = false
					flushTable()
				}
			}
		}
	}
	flushTable()

	return &Result{Text: strings.TrimSpace(text.String()), Tables: tables}, nil
}

// trimEmptyRows drops fully empty leading and trailing rows, common in
// spreadsheet exports with repeated blank cells.
func trimEmptyRows(rows [][]string) [][]string {
	isEmpty := func(r []string) bool {
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	for len(rows) > 0 && isEmpty(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && isEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}
