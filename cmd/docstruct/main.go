// Command docstruct processes one document file and prints the
// resulting record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/docstruct/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		tag        = flag.String("tag", "", "context tag recorded in document metadata")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: docstruct [-config file] [-tag tag] [-v] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg pipeline.Config
	if *configPath != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Logger = logger

	pipe := pipeline.New(cfg)
	doc, err := pipe.Process(context.Background(), path, *tag)
	if err != nil {
		logger.Error("process failed", "path", path, "err", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		logger.Error("encode output", "err", err)
		os.Exit(1)
	}
}
