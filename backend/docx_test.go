package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const docxFixture = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Annual Report</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Revenue grew across all regions.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Region</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Revenue</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>West</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>1200</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>Closing remarks.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestDocxExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.docx")
	writeZip(t, path, map[string]string{"word/document.xml": docxFixture})

	res, err := NewDocx(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(res.Text, "# Annual Report") {
		t.Errorf("heading not rendered: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Closing remarks.") {
		t.Errorf("paragraph after table missing: %q", res.Text)
	}
	if strings.Contains(res.Text, "West") {
		t.Errorf("table cell text leaked into body text: %q", res.Text)
	}

	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(res.Tables))
	}
	tbl := res.Tables[0]
	if len(tbl.Headers) != 2 || tbl.Headers[0] != "Region" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "1200" {
		t.Errorf("rows = %v", tbl.Rows)
	}
	if tbl.Method != "docx_table" {
		t.Errorf("method = %q", tbl.Method)
	}
}

func TestDocxMissingDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	writeZip(t, path, map[string]string{"other.xml": "<x/>"})

	if _, err := NewDocx(testLogger()).Extract(context.Background(), path); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"Heading3", 3},
		{"Title", 1},
		{"Subtitle", 2},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := docxHeadingLevel(tt.style); got != tt.want {
			t.Errorf("docxHeadingLevel(%q) = %d, want %d", tt.style, got, tt.want)
		}
	}
}
