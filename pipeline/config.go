package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/docstruct/chunker"
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// ChunkSize is the target text chunk size in characters.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the character overlap between consecutive
	// sub-chunks of an oversized section.
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// BackendTimeout bounds each backend invocation (default: 30s).
	// A backend that times out is dropped, not a document failure.
	BackendTimeout time.Duration `json:"backend_timeout" yaml:"backend_timeout"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = chunker.DefaultChunkOverlap
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
