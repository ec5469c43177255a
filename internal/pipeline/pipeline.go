// Package pipeline wires the Preprocessor, Lexer, AST parser, Semantic
// analyzer, Include-symbol loader and Semantic tokenizer into the single
// synchronous per-request flow spec §5 describes: given one document
// snapshot, run every stage to completion with no suspension points other
// than the filesystem reads the include loader performs and the final
// payload handoff. Cancellation is honored only at the coarse boundaries
// between stages, per spec §5.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lsl-tools/lslintel/internal/analyzer"
	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/defs"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/ice"
	"github.com/lsl-tools/lslintel/internal/includes"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/logging"
	"github.com/lsl-tools/lslintel/internal/parser"
	"github.com/lsl-tools/lslintel/internal/position"
	"github.com/lsl-tools/lslintel/internal/preprocessor"
	"github.com/lsl-tools/lslintel/internal/semtok"
)

// Request is the pipeline's external input (spec §6): the document's
// text, its URI (used only to derive a base path and __FILE__), and the
// config fields a caller may override per-request.
type Request struct {
	SourceText         string
	DocumentURI        string
	InitialMacros      map[string]string
	IncludeSearchPaths []string
}

// Result is the pipeline's external output (spec §6): the encoded
// semantic-tokens payload, its run ID (for correlating asynchronous
// diagnostic notifications with the request that produced them), and the
// side-channel of accumulated diagnostics.
type Result struct {
	RunID       string
	Tokens      *semtok.Payload
	Diagnostics []diagnostics.Diagnostic
}

// Pipeline runs requests against a shared, immutable Defs registry and an
// include-symbol loader whose cache may be reused across many requests
// (spec §5: "no shared mutable state other than the read-only Defs
// registry ... must be safely shareable across threads"). A single
// Pipeline value must not be used concurrently from multiple goroutines
// for the SAME request, but independent requests against it are safe:
// Defs is read-only and Loader synchronizes its own cache internally.
type Pipeline struct {
	Defs    *defs.Defs
	Loader  *includes.Loader
	Logger  *zap.Logger
	BaseCfg *config.Config
}

// New builds a Pipeline from an already-loaded Defs registry and a
// caller-owned include loader. Either may be nil: a nil Defs disables
// built-in classification (everything falls through to
// variable/function/no-token), and a nil Loader disables include-symbol
// loading (the preprocessor still resolves each #include and reports the
// missing ones, but no included file contributes symbols to analysis).
func New(d *defs.Defs, loader *includes.Loader, logger *zap.Logger, baseCfg *config.Config) *Pipeline {
	if baseCfg == nil {
		baseCfg = config.DefaultConfig()
	}

	return &Pipeline{Defs: d, Loader: loader, Logger: logger, BaseCfg: baseCfg}
}

// Run executes one pipeline request end to end. A cancelled ctx produces
// no observable partial output: Run checks ctx between stages and, if
// cancelled, returns a Result with no tokens and no diagnostics rather
// than a half-built payload.
func (p *Pipeline) Run(ctx context.Context, req *Request) *Result {
	runID := uuid.NewString()
	log := logging.ForRun(p.Logger, runID)

	cfg := p.requestConfig(req)

	res := &Result{RunID: runID}

	if ctx.Err() != nil {
		return res
	}

	filePath := req.DocumentURI
	if filePath == "" {
		filePath = "<unsaved>"
	}

	var fatal *ice.Error

	pre, parseDiags, _, payload := func() (pre *preprocessor.Result, parseDiags *diagnostics.Collection, analysis *analyzer.Result, payload *semtok.Payload) {
		defer func() {
			if r := recover(); r != nil {
				fatal = ice.Newf(ice.CategoryTokens, map[string]interface{}{"run_id": runID, "recovered": r}, "pipeline panic during analysis of %s", filePath)
			}
		}()

		log.Debug("preprocessing", zap.String("file", filePath))
		pre := preprocessor.Process(req.SourceText, cfg, filePath)

		if ctx.Err() != nil {
			return pre, nil, nil, nil
		}

		log.Debug("parsing", zap.Int("tokens", len(pre.ExpandedTokens)))

		toks := make([]lexer.Token, len(pre.ExpandedTokens))
		for i, et := range pre.ExpandedTokens {
			toks[i] = et.Token
		}

		diags := diagnostics.NewCollection()
		script := parser.New(toks, diags, filePath).Parse()

		if ctx.Err() != nil {
			return pre, diags, nil, nil
		}

		var incSyms *analyzer.IncludeSymbols
		if p.Loader != nil {
			var resolved []string
			for _, e := range pre.Includes {
				if e.Resolved != "" {
					resolved = append(resolved, e.Resolved)
				}
			}

			log.Debug("resolving includes", zap.Int("count", len(resolved)))
			incSyms = p.Loader.Load(resolved)
		}

		if ctx.Err() != nil {
			return pre, diags, nil, nil
		}

		log.Debug("analyzing")
		analysis := analyzer.Analyze(script, incSyms)

		if ctx.Err() != nil {
			return pre, diags, analysis, nil
		}

		log.Debug("computing semantic tokens")
		payload := semtok.Compute(&semtok.Input{
			Source:   req.SourceText,
			FilePath: filePath,
			Pre:      pre,
			Analysis: analysis,
			Defs:     p.Defs,
		})

		return pre, diags, analysis, payload
	}()

	if fatal != nil {
		log.Error("internal consistency error", zap.Error(fatal))

		return &Result{
			RunID:  runID,
			Tokens: &semtok.Payload{Data: nil},
			Diagnostics: []diagnostics.Diagnostic{
				diagnostics.NewBuilder().
					Error().
					WithCategory(diagnostics.CategoryInternal).
					WithSourceFile(filePath).
					WithSpan(position.NewSpan(0, len(req.SourceText))).
					WithMessage(fatal.Error()).
					Build(),
			},
		}
	}

	if ctx.Err() != nil {
		return &Result{RunID: runID}
	}

	res.Tokens = payload

	if pre != nil {
		res.Diagnostics = append(res.Diagnostics, pre.Diagnostics.All()...)
	}

	if parseDiags != nil {
		res.Diagnostics = append(res.Diagnostics, parseDiags.All()...)
	}

	return res
}

// requestConfig overlays per-request overrides onto the pipeline's base
// config without mutating it, so concurrent requests against the same
// Pipeline never race on shared config state.
func (p *Pipeline) requestConfig(req *Request) *config.Config {
	cfg := *p.BaseCfg

	if req.IncludeSearchPaths != nil {
		cfg.IncludeSearchPaths = req.IncludeSearchPaths
	}

	if req.InitialMacros != nil {
		merged := make(map[string]string, len(cfg.InitialMacros)+len(req.InitialMacros))
		for k, v := range cfg.InitialMacros {
			merged[k] = v
		}

		for k, v := range req.InitialMacros {
			merged[k] = v
		}

		cfg.InitialMacros = merged
	}

	return &cfg
}
