package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/defs"
	"github.com/lsl-tools/lslintel/internal/includes"
	"github.com/lsl-tools/lslintel/internal/pipeline"
)

// runFile builds a one-shot Pipeline and runs it against the file at
// path, using the embedded Defs registry and an include loader rooted at
// the file's own directory search path.
func runFile(path string, searchPaths []string) (*pipeline.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	loader, err := includes.NewLoader(nil, 256)
	if err != nil {
		return nil, fmt.Errorf("start include loader: %w", err)
	}
	defer loader.Close()

	cfg := config.DefaultConfig()
	cfg.IncludeSearchPaths = searchPaths

	p := pipeline.New(defs.MustLoadEmbedded(), loader, logger, cfg)

	res := p.Run(context.Background(), &pipeline.Request{
		SourceText:  string(src),
		DocumentURI: path,
	})

	return res, nil
}
