package backend

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// Docx is the native-table-object strategy for word-processor files.
// It streams word/document.xml, collecting paragraph text and turning
// every top-level w:tbl into a candidate table.
type Docx struct {
	logger *slog.Logger
}

func NewDocx(logger *slog.Logger) *Docx {
	return &Docx{logger: logger}
}

func (d *Docx) Name() string    { return "docx_table" }
func (d *Docx) Available() bool { return true }

func (d *Docx) CanHandle(ext string) bool { return ext == "docx" }

func (d *Docx) Extract(ctx context.Context, path string) (*Result, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var (
		text       strings.Builder
		tables     []document.Table
		cellText   strings.Builder
		row        []string
		rows       [][]string
		paraText   strings.Builder
		paraStyle  string
		tableDepth int
		inPara     bool
	)

	flushTable := func() {
		if len(rows) == 0 {
			return
		}
		tbl := document.Table{
			Headers:    rows[0],
			Rows:       rows[1:],
			Index:      len(tables),
			Method:     d.Name(),
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
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					row = row[:0]
				}
			case "tc":
				if tableDepth == 1 {
					cellText.Reset()
				}
			case "p":
				inPara = true
				paraText.Reset()
				paraStyle = ""
			case "pStyle":
				if inPara {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							paraStyle = attr.Value
						}
					}
				}
			case "tab":
				if inPara {
					paraText.WriteByte('\t')
				}
			case "br":
				if inPara {
					paraText.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inPara {
				paraText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if !inPara {
					continue
				}
				inPara = false
				pt := strings.TrimSpace(paraText.String())
				if tableDepth > 0 {
					if pt != "" {
						if cellText.Len() > 0 {
							cellText.WriteByte(' ')
						}
						cellText.WriteString(pt)
					}
					continue
				}
				if pt == "" {
					continue
				}
				if lvl := docxHeadingLevel(paraStyle); lvl > 0 {
					text.WriteString(strings.Repeat("#", lvl))
					text.WriteByte(' ')
				}
				text.WriteString(pt)
				text.WriteString("\n\n")
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.TrimSpace(cellText.String()))
				}
			case "tr":
				if tableDepth == 1 && len(row) > 0 {
					rows = append(rows, append([]string(nil), row...))
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					flushTable()
				}
			}
		}
	}
	flushTable()

	return &Result{Text: strings.TrimSpace(text.String()), Tables: tables}, nil
}

// docxHeadingLevel maps a paragraph style name to a heading level:
// "Heading1" → 1, "Title" → 1, "Subtitle" → 2, otherwise 0.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
