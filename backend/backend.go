// Package backend implements the extraction strategies. Each backend
// handles one strategy for one or more file extensions; several
// backends may target the same format so the cross-validator can
// reconcile their candidate tables.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/hazyhaar/docstruct/document"
)

// ErrUnavailable marks a backend that cannot run at all in this build
// or environment. It is checked at dispatch time, never surfaced as a
// per-file error.
var ErrUnavailable = errors.New("backend unavailable")

// Result is what one backend produced for one file: raw text and zero
// or more candidate tables. Tables are normalized (row length equals
// header length) before being returned.
type Result struct {
	Text   string
	Tables []document.Table
}

// Backend is one extraction strategy. Extract must not propagate
// recoverable per-page or per-sheet failures: it logs and skips them
// so one bad page does not void the whole file.
type Backend interface {
	// Name identifies the strategy, e.g. "pdf_grid".
	Name() string

	// CanHandle reports whether the backend accepts files with the
	// given lower-case extension (without the dot).
	CanHandle(ext string) bool

	// Available reports whether the backend can run at all. An
	// unavailable backend is excluded from dispatch, not an error.
	Available() bool

	// Extract parses one file into raw text and candidate tables.
	Extract(ctx context.Context, path string) (*Result, error)
}

// Registry holds all known backends and answers dispatch queries by
// file extension.
type Registry struct {
	backends []Backend
	logger   *slog.Logger
}

// NewRegistry builds a registry with every built-in backend
// registered.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	r.Register(NewPDFGrid(logger))
	r.Register(NewPDFStream(logger))
	r.Register(NewPDFText(logger))
	r.Register(NewDocx(logger))
	r.Register(NewODT(logger))
	r.Register(NewXLSX(logger))
	r.Register(NewCSV(logger))
	r.Register(NewPPTX(logger))
	r.Register(NewHTML(logger))
	r.Register(NewText(logger))
	return r
}

// Register adds a backend. Unavailable backends are kept but never
// dispatched.
func (r *Registry) Register(b Backend) {
	if !b.Available() {
		r.logger.Warn("backend unavailable, excluded from dispatch", "backend", b.Name())
	}
	r.backends = append(r.backends, b)
}

// For returns every available backend that accepts the extension.
func (r *Registry) For(ext string) []Backend {
	var out []Backend
	for _, b := range r.backends {
		if b.Available() && b.CanHandle(ext) {
			out = append(out, b)
		}
	}
	return out
}

// Extensions returns the sorted set of extensions at least one
// available backend accepts.
func (r *Registry) Extensions() []string {
	known := []string{"pdf", "docx", "odt", "ods", "xlsx", "csv", "tsv", "pptx", "html", "htm", "md", "markdown", "txt", "text"}
	var out []string
	for _, ext := range known {
		if len(r.For(ext)) > 0 {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
