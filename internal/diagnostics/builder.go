package diagnostics

import (
	"fmt"

	"github.com/lsl-tools/lslintel/internal/position"
)

// Builder provides a fluent interface for constructing a Diagnostic,
// mirroring the teacher's DiagnosticBuilder shape but trimmed to the
// fields spec §7 diagnostics actually carry.
type Builder struct {
	d Diagnostic
}

// NewBuilder starts a new diagnostic at SeverityError by default.
func NewBuilder() *Builder {
	return &Builder{d: Diagnostic{Severity: SeverityError}}
}

// Error sets error severity.
func (b *Builder) Error() *Builder {
	b.d.Severity = SeverityError
	return b
}

// Warning sets warning severity.
func (b *Builder) Warning() *Builder {
	b.d.Severity = SeverityWarning
	return b
}

// Info sets info severity.
func (b *Builder) Info() *Builder {
	b.d.Severity = SeverityInfo
	return b
}

// WithCategory sets the diagnostic category.
func (b *Builder) WithCategory(c Category) *Builder {
	b.d.Category = c
	return b
}

// WithMessage sets the diagnostic message verbatim.
func (b *Builder) WithMessage(msg string) *Builder {
	b.d.Message = msg
	return b
}

// WithMessagef sets the diagnostic message via fmt.Sprintf.
func (b *Builder) WithMessagef(format string, args ...interface{}) *Builder {
	b.d.Message = fmt.Sprintf(format, args...)
	return b
}

// WithSpan sets the diagnostic's source span.
func (b *Builder) WithSpan(span position.Span) *Builder {
	b.d.Span = span
	return b
}

// WithSourceFile sets the originating file path.
func (b *Builder) WithSourceFile(filename string) *Builder {
	b.d.SourceFile = filename
	return b
}

// WithRelated attaches a related-information entry.
func (b *Builder) WithRelated(message string, loc position.Span) *Builder {
	b.d.RelatedInfo = append(b.d.RelatedInfo, RelatedInformation{Message: message, Location: loc})
	return b
}

// Build returns the constructed Diagnostic.
func (b *Builder) Build() Diagnostic {
	return b.d
}
