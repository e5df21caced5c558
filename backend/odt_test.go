package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const odtFixture = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
    xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
    xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0">
  <office:body>
    <office:text>
      <text:h text:outline-level="2">Budget Overview</text:h>
      <text:p>Spending held steady this year.</text:p>
      <table:table table:name="Budget">
        <table:table-row>
          <table:table-cell><text:p>Item</text:p></table:table-cell>
          <table:table-cell><text:p>Cost</text:p></table:table-cell>
        </table:table-row>
        <table:table-row>
          <table:table-cell><text:p>Rent</text:p></table:table-cell>
          <table:table-cell table:number-columns-repeated="1"><text:p>900</text:p></table:table-cell>
        </table:table-row>
      </table:table>
    </office:text>
  </office:body>
</office:document-content>`

func TestODTExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "budget.odt")
	writeZip(t, path, map[string]string{"content.xml": odtFixture})

	res, err := NewODT(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(res.Text, "## Budget Overview") {
		t.Errorf("heading not rendered at outline level: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Spending held steady") {
		t.Errorf("paragraph missing: %q", res.Text)
	}

	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(res.Tables))
	}
	tbl := res.Tables[0]
	if tbl.Title != "Budget" {
		t.Errorf("title = %q", tbl.Title)
	}
	if len(tbl.Headers) != 2 || tbl.Headers[1] != "Cost" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "900" {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestODTRepeatedCells(t *testing.T) {
	fixture := `<?xml version="1.0"?>
<office:document-content
    xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
    xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0">
  <office:body><office:spreadsheet>
    <table:table table:name="Sheet1">
      <table:table-row>
        <table:table-cell table:number-columns-repeated="3"><text:p>X</text:p></table:table-cell>
      </table:table-row>
      <table:table-row>
        <table:table-cell><text:p>a</text:p></table:table-cell>
        <table:table-cell><text:p>b</text:p></table:table-cell>
        <table:table-cell><text:p>c</text:p></table:table-cell>
      </table:table-row>
    </table:table>
  </office:spreadsheet></office:body>
</office:document-content>`

	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.ods")
	writeZip(t, path, map[string]string{"content.xml": fixture})

	res, err := NewODT(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables", len(res.Tables))
	}
	if got := res.Tables[0].Headers; len(got) != 3 {
		t.Errorf("repeated cell not expanded: %v", got)
	}
}

func TestTrimEmptyRows(t *testing.T) {
	rows := [][]string{
		{"", " "},
		{"a", "b"},
		{"", ""},
	}
	got := trimEmptyRows(rows)
	if len(got) != 1 || got[0][0] != "a" {
		t.Errorf("got %v", got)
	}
}
