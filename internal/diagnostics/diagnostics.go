// Package diagnostics provides source-located diagnostic messages for the
// LSL preprocessor, lexer, parser and analyzer (spec §7: error kinds 1-5
// are recoverable and reported this way; kind 6, an internal invariant
// violation, is reported as a single whole-document diagnostic).
package diagnostics

import (
	"sort"

	"github.com/lsl-tools/lslintel/internal/position"
)

// Severity is the diagnostic's level, matching the LSP DiagnosticSeverity
// ordering (Error=1 .. Hint=4 in LSP; here zero-based for Go ergonomics).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Category classifies which pipeline stage produced a diagnostic, per the
// error kinds enumerated in spec §7.
type Category int

const (
	CategoryPreprocessorSyntax Category = iota
	CategoryMissingInclude
	CategoryMacroExpansionOverflow
	CategoryParseRecovery
	CategoryFilesystem
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryPreprocessorSyntax:
		return "preprocessor-syntax"
	case CategoryMissingInclude:
		return "missing-include"
	case CategoryMacroExpansionOverflow:
		return "macro-expansion-overflow"
	case CategoryParseRecovery:
		return "parse-recovery"
	case CategoryFilesystem:
		return "filesystem"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// RelatedInformation points at a secondary location relevant to a
// diagnostic (e.g. the opening #if of an unbalanced conditional group).
type RelatedInformation struct {
	Message  string
	Location position.Span
}

// Diagnostic is a single source-located problem report.
type Diagnostic struct {
	Severity    Severity
	Category    Category
	Message     string
	Span        position.Span
	SourceFile  string
	RelatedInfo []RelatedInformation
}

// Collection accumulates diagnostics for one pipeline run and exposes
// them in a stable, span-sorted order so that output is deterministic
// regardless of which stage emitted which diagnostic first (spec §8
// idempotence: "running the pipeline twice ... produces byte-identical
// outputs").
type Collection struct {
	items []Diagnostic
}

// NewCollection returns an empty diagnostic collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a diagnostic.
func (c *Collection) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// HasErrors reports whether any accumulated diagnostic is SeverityError.
func (c *Collection) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// All returns a stable, deterministically ordered copy of the
// accumulated diagnostics: sorted by source file, then by span start,
// then by severity, then by message (as a final tiebreaker for
// diagnostics that share a span).
func (c *Collection) All() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}

		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}

		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}

		return a.Message < b.Message
	})

	return out
}

// Len returns the number of accumulated diagnostics.
func (c *Collection) Len() int {
	return len(c.items)
}
