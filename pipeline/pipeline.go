// Package pipeline assembles the full extraction run: backend
// dispatch, cross-validation, chunk composition, and the final
// document record. The pipeline is a pure function per document with
// no shared mutable state, so callers may process arbitrarily many
// documents concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/docstruct/backend"
	"github.com/hazyhaar/docstruct/chunker"
	"github.com/hazyhaar/docstruct/document"
	"github.com/hazyhaar/docstruct/validate"
)

// ErrUnreadable is the only error Process returns for a file the
// engine could open neither through a backend nor through the
// best-effort byte decode.
var ErrUnreadable = errors.New("document unreadable")

// Pipeline is the document processing engine. Construct once, reuse
// freely across goroutines.
type Pipeline struct {
	cfg       Config
	registry  *backend.Registry
	validator *validate.Validator
	composer  *chunker.Composer
	logger    *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:       cfg,
		registry:  backend.NewRegistry(cfg.Logger),
		validator: validate.New(cfg.Logger),
		composer:  chunker.New(cfg.ChunkSize, cfg.ChunkOverlap, cfg.Logger),
		logger:    cfg.Logger,
	}
}

// Process runs every applicable backend against the file, reconciles
// their candidate tables, composes chunks, and assembles the final
// record. Backend failures and timeouts degrade the result instead of
// failing it; only a file nothing can decode returns an error.
func (p *Pipeline) Process(ctx context.Context, path, contextTag string) (*document.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnreadable, path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: file too large: %d bytes (max %d)", ErrUnreadable, info.Size(), p.cfg.MaxFileSize)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	backends := p.registry.For(ext)
	p.logger.Debug("dispatching", "path", path, "format", ext, "backends", len(backends))

	results := p.fanOut(ctx, backends, path)

	content, candidates, methods := combine(backends, results)
	if content == "" && len(candidates) == 0 {
		// Every backend failed or none applied: best-effort decode.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrUnreadable, path, err)
		}
		content = backend.DecodeBytes(data)
		if content == "" {
			return nil, fmt.Errorf("%w: %s: no backend produced output and byte decode is empty", ErrUnreadable, path)
		}
		methods = []string{"byte_decode"}
		p.logger.Warn("fell back to raw byte decode", "path", path)
	}

	tables := p.validator.Validate(candidates)
	chunks := p.composer.Compose(content, tables)
	definitions := chunker.ExtractDefinitions(content)
	statistics := append(chunker.ExtractStatistics(content), chunker.TableStatistics(tables)...)

	return &document.Document{
		ID:          uuid.New().String(),
		Filename:    filepath.Base(path),
		Path:        path,
		FileType:    ext,
		Content:     content,
		ContentHash: ContentHash(content),
		Tables:      tables,
		Chunks:      chunks,
		Definitions: definitions,
		Statistics:  statistics,
		Meta: document.Metadata{
			TableCount:  len(tables),
			ChunkCount:  len(chunks),
			MainTag:     contextTag,
			Methods:     methods,
			Status:      "complete",
			ProcessedAt: time.Now().UTC(),
		},
	}, nil
}

// fanOut runs the backends concurrently, each under its own timeout.
// A failing or timed-out backend leaves a nil slot; siblings are
// unaffected. Cancelling ctx cancels all in-flight backends.
func (p *Pipeline) fanOut(ctx context.Context, backends []backend.Backend, path string) []*backend.Result {
	results := make([]*backend.Result, len(backends))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range backends {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(ctx, p.cfg.BackendTimeout)
			defer cancel()
			res, err := b.Extract(bctx, path)
			if err != nil {
				p.logger.Warn("backend failed", "backend", b.Name(), "path", path, "err", err)
				return nil // failures degrade, never abort siblings
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // individual errors are swallowed above; only ctx cancellation remains
	return results
}

// combine merges backend outputs: the longest raw text wins as the
// document content, candidate tables are pooled for cross-validation,
// and the distinct contributing methods are recorded.
func combine(backends []backend.Backend, results []*backend.Result) (string, []document.Table, []string) {
	var content string
	var candidates []document.Table
	var methods []string
	for i, res := range results {
		if res == nil {
			continue
		}
		if len(res.Text) > len(content) {
			content = res.Text
		}
		candidates = append(candidates, res.Tables...)
		if res.Text != "" || len(res.Tables) > 0 {
			methods = append(methods, backends[i].Name())
		}
	}
	sort.Strings(methods)
	return content, candidates, methods
}

// ContentHash returns the deterministic hash of the normalized content
// string used by the storage layer for exact-duplicate detection.
func ContentHash(content string) string {
	normalized := strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}
