package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("héllo wörld"), "héllo wörld"},
		{"windows1252", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"crlf", []byte("a\r\nb\r\nc"), "a\nb\nc"},
		{"trailing blanks", []byte("line one   \nline two\t\n"), "line one\nline two"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		if got := DecodeBytes(tt.in); got != tt.want {
			t.Errorf("%s: DecodeBytes = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTextExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("First line.\r\n\r\nSecond paragraph.  \r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewText(testLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "First line.\n\nSecond paragraph." {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Tables) != 0 {
		t.Errorf("text backend should yield no tables, got %d", len(res.Tables))
	}
}

func TestTextCanHandle(t *testing.T) {
	b := NewText(testLogger())
	for _, ext := range []string{"txt", "text", "md", "markdown"} {
		if !b.CanHandle(ext) {
			t.Errorf("should handle %q", ext)
		}
	}
	if b.CanHandle("pdf") {
		t.Error("should not handle pdf")
	}
}
