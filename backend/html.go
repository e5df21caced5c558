package backend

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/docstruct/document"
)

// HTML extracts markdown text and candidate tables from HTML files.
// Input is sanitized first; <table> elements become candidate tables
// and the remaining markup is converted to markdown.
type HTML struct {
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
	converter *converter.Converter
}

func NewHTML(logger *slog.Logger) *HTML {
	return &HTML{
		logger:    logger,
		sanitizer: bluemonday.UGCPolicy(),
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

func (h *HTML) Name() string    { return "html_table" }
func (h *HTML) Available() bool { return true }

func (h *HTML) CanHandle(ext string) bool { return ext == "html" || ext == "htm" }

func (h *HTML) Extract(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	clean := h.sanitizer.SanitizeBytes(data)

	root, err := html.Parse(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tables := h.extractTables(root)

	text, err := h.converter.ConvertString(string(clean))
	if err != nil || strings.TrimSpace(text) == "" {
		// Fall back to the raw text nodes.
		text = collectText(root)
	}

	return &Result{Text: strings.TrimSpace(text), Tables: tables}, nil
}

func (h *HTML) extractTables(root *html.Node) []document.Table {
	var tables []document.Table
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			if tbl, ok := h.parseTable(n, len(tables)); ok {
				tables = append(tables, tbl)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return tables
}

func (h *HTML) parseTable(table *html.Node, index int) (document.Table, bool) {
	var rows [][]string
	var caption string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Caption:
				caption = collectText(n)
				return
			case atom.Tr:
				var row []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
						row = append(row, collectText(c))
					}
				}
				if len(row) > 0 {
					rows = append(rows, row)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	rows = trimEmptyRows(rows)
	if len(rows) < 2 {
		return document.Table{}, false
	}
	tbl := document.Table{
		Title:      caption,
		Headers:    rows[0],
		Rows:       rows[1:],
		Index:      index,
		Method:     h.Name(),
		Confidence: 0.8,
		Status:     document.StatusUnvalidated,
	}
	tbl.Normalize()
	return tbl, true
}

// collectText gathers the visible text of a node subtree.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			txt := strings.TrimSpace(n.Data)
			if txt != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(txt)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
