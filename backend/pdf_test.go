package backend

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestScanPagePositionedText(t *testing.T) {
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(Hello) Tj\nET"
	items, _ := scanPage([]byte(stream))
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].text != "Hello" || items[0].x != 72 || items[0].y != 720 {
		t.Errorf("item = %+v", items[0])
	}
}

func TestScanPageTextMatrix(t *testing.T) {
	stream := "BT 1 0 0 1 100 650 Tm (World) Tj ET"
	items, _ := scanPage([]byte(stream))
	if len(items) != 1 || items[0].x != 100 || items[0].y != 650 {
		t.Fatalf("items = %+v", items)
	}
}

func TestScanPageArrayShow(t *testing.T) {
	stream := "BT 72 700 Td [(He) -120 (llo)] TJ ET"
	items, _ := scanPage([]byte(stream))
	if len(items) != 1 || items[0].text != "Hello" {
		t.Fatalf("items = %+v", items)
	}
}

func TestScanPageLeadingAdvance(t *testing.T) {
	stream := "BT 14 TL 72 700 Td (one) Tj T* (two) Tj ET"
	items, _ := scanPage([]byte(stream))
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[1].y != 700-14 {
		t.Errorf("second line y = %f, want %f", items[1].y, 700-14.0)
	}
}

func TestScanPageEscapedString(t *testing.T) {
	stream := `BT 72 700 Td (a\(b\)c \\ \101) Tj ET`
	items, _ := scanPage([]byte(stream))
	if len(items) != 1 || items[0].text != `a(b)c \ A` {
		t.Fatalf("items = %+v", items)
	}
}

func TestScanPageSegments(t *testing.T) {
	stream := "10 100 m 110 100 l S\n10 2 0.5 96 re f"
	_, segs := scanPage([]byte(stream))
	if len(segs) != 2 {
		t.Fatalf("got %d segments", len(segs))
	}
	if !segs[0].horizontal() {
		t.Errorf("path line should be horizontal: %+v", segs[0])
	}
	if !segs[1].vertical() {
		t.Errorf("thin rect should read as a vertical rule: %+v", segs[1])
	}
}

func TestGroupIntoLines(t *testing.T) {
	items := []textItem{
		{x: 200, y: 700, text: "right"},
		{x: 50, y: 701, text: "left"},
		{x: 50, y: 650, text: "below"},
	}
	lines := groupIntoLines(items)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0].items[0].text != "left" || lines[0].items[1].text != "right" {
		t.Errorf("first line not sorted left to right: %+v", lines[0].items)
	}
	if lines[1].items[0].text != "below" {
		t.Errorf("lines not top-down: %+v", lines[1])
	}
}

func TestCluster(t *testing.T) {
	got := cluster([]float64{10, 11, 12, 50, 51, 100}, 3)
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	if got[0] != 11 || got[1] != 50.5 || got[2] != 100 {
		t.Errorf("representatives = %v", got)
	}
}

func TestPDFTextDetectTables(t *testing.T) {
	lines := []string{
		"Quarterly results were solid overall.",
		"Name   Qty   Price",
		"Apples   3   1.50",
		"Pears   2   2.00",
		"No structure here.",
	}
	p := NewPDFText(testLogger())
	tables := p.detectTables(lines, 1, 0)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	tbl := tables[0]
	if len(tbl.Headers) != 3 || tbl.Headers[0] != "Name" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][2] != "2.00" {
		t.Errorf("rows = %v", tbl.Rows)
	}
	if tbl.Page != 1 {
		t.Errorf("page = %d", tbl.Page)
	}
}

func TestPDFTextShortRunIgnored(t *testing.T) {
	lines := []string{"a   b", "c   d"}
	tables := NewPDFText(testLogger()).detectTables(lines, 1, 0)
	if len(tables) != 0 {
		t.Errorf("two-line run should not qualify, got %+v", tables)
	}
}

func TestPrintableRatio(t *testing.T) {
	if r := printableRatio("clean text"); r != 1.0 {
		t.Errorf("clean text ratio = %f", r)
	}
	if r := printableRatio("ab��"); r >= 1.0 {
		t.Errorf("replacement runes should lower the ratio, got %f", r)
	}
	if r := printableRatio(""); r != 1.0 {
		t.Errorf("empty ratio = %f", r)
	}
}

func TestGridTable(t *testing.T) {
	// Three horizontal rules and three vertical rules bound a 2x2 grid.
	segs := []segment{
		{10, 100, 110, 100}, {10, 80, 110, 80}, {10, 60, 110, 60},
		{10, 60, 10, 100}, {60, 60, 60, 100}, {110, 60, 110, 100},
	}
	items := []textItem{
		{x: 15, y: 90, text: "Item"},
		{x: 65, y: 90, text: "Cost"},
		{x: 15, y: 70, text: "Rent"},
		{x: 65, y: 70, text: "900"},
	}
	p := NewPDFGrid(testLogger())
	tbl, ok := p.gridTable(items, segs, 1, 0)
	if !ok {
		t.Fatal("expected a grid table")
	}
	if len(tbl.Headers) != 2 || tbl.Headers[0] != "Item" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "900" {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestGridTableNeedsRules(t *testing.T) {
	items := []textItem{{x: 15, y: 90, text: "loose text"}}
	p := NewPDFGrid(testLogger())
	if _, ok := p.gridTable(items, nil, 1, 0); ok {
		t.Error("no rules should mean no grid table")
	}
}

func TestAlignedTables(t *testing.T) {
	lines := []textLine{
		{y: 90, items: []textItem{{x: 10, y: 90, text: "Name"}, {x: 60, y: 90, text: "Qty"}}},
		{y: 80, items: []textItem{{x: 10, y: 80, text: "Apples"}, {x: 60, y: 80, text: "3"}}},
		{y: 70, items: []textItem{{x: 11, y: 70, text: "Pears"}, {x: 61, y: 70, text: "2"}}},
	}
	p := NewPDFStream(testLogger())
	tables := p.alignedTables(lines, 1, 0)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	tbl := tables[0]
	if len(tbl.Headers) != 2 || tbl.Headers[1] != "Qty" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][0] != "Pears" {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestAlignedTablesMisalignedLinesSplit(t *testing.T) {
	lines := []textLine{
		{y: 90, items: []textItem{{x: 10, y: 90, text: "a"}, {x: 60, y: 90, text: "b"}}},
		{y: 80, items: []textItem{{x: 200, y: 80, text: "c"}, {x: 300, y: 80, text: "d"}}},
		{y: 70, items: []textItem{{x: 10, y: 70, text: "e"}, {x: 60, y: 70, text: "f"}}},
	}
	tables := NewPDFStream(testLogger()).alignedTables(lines, 1, 0)
	if len(tables) != 0 {
		t.Errorf("misaligned lines should not form a table, got %+v", tables)
	}
}

func TestPDFTextExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.pdf")
	if err := os.WriteFile(path, buildTextPDF("Hello World from the text layer"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewPDFText(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(res.Text, "Hello World") {
		t.Errorf("text layer missing: %q", res.Text)
	}
}

func TestPDFGridExtractNoGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prose.pdf")
	if err := os.WriteFile(path, buildTextPDF("just prose, no ruling lines"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewPDFGrid(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(res.Tables) != 0 {
		t.Errorf("prose page should yield no grid tables, got %+v", res.Tables)
	}
}

// buildTextPDF assembles a minimal valid single-page PDF with correct
// xref offsets around one text-showing content stream.
func buildTextPDF(text string) []byte {
	escaped := strings.ReplaceAll(text, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "(", `\(`)
	escaped = strings.ReplaceAll(escaped, ")", `\)`)

	stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	b.WriteString("4 0 obj\n<< /Length ")
	b.WriteString(strconv.Itoa(len(stream)))
	b.WriteString(" >>\nstream\n")
	b.WriteString(stream)
	b.WriteString("\nendstream\nendobj\n")

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefOffset := b.Len()
	b.WriteString("xref\n0 6\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		off := strconv.Itoa(offsets[i])
		b.WriteString(strings.Repeat("0", 10-len(off)) + off)
		b.WriteString(" 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xrefOffset))
	b.WriteString("\n%%EOF\n")

	return []byte(b.String())
}
