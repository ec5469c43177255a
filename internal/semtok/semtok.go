package semtok

import (
	"sort"
	"strings"

	"github.com/lsl-tools/lslintel/internal/analyzer"
	"github.com/lsl-tools/lslintel/internal/defs"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/position"
	"github.com/lsl-tools/lslintel/internal/preprocessor"
)

// Input bundles everything Compute needs: the raw source (for the merge-
// conflict pre-pass and line/char mapping), the preprocessor's expanded
// token stream and macro tables, the analyzer's declaration/reference
// data, and the shared Defs registry for built-in classification.
type Input struct {
	Source   string
	FilePath string
	Pre      *preprocessor.Result
	Analysis *analyzer.Result
	Defs     *defs.Defs
}

// Payload is the final output: the flat delta-encoded array ready to
// hand back as an LSP textDocument/semanticTokens/full result.
type Payload struct {
	Data []uint32
}

// rawToken is one classified token in absolute byte-offset form, before
// offset/length are converted to a (line, UTF-16 char, UTF-16 length)
// triple and delta-encoded. length is a byte count here; Compute converts
// it to UTF-16 code units per token right before encoding.
type rawToken struct {
	offset int
	length int
	typ    TokenType
	mods   uint32
}

// Compute runs the classification priority chain (spec §4.5) over one
// document and returns the encoded semantic-tokens payload.
func Compute(in *Input) *Payload {
	sf := position.NewSourceFile(in.FilePath, in.Source)
	conflicts := ScanConflicts(in.Source)

	toks := make([]lexer.Token, len(in.Pre.ExpandedTokens))
	for i, et := range in.Pre.ExpandedTokens {
		toks[i] = et.Token
	}

	writes := ScanWriteSites(toks, in.Analysis)

	var raw []rawToken

	for i, tok := range toks {
		// spec §4.5 step 1: a merge-conflict content hunk emits nothing;
		// its marker lines are handled once below, not per lexer token.
		if conflicts.IsSuppressed(tok.Span.Start) {
			continue
		}
		if _, isMarker := conflicts.MarkerAt(tok.Span.Start); isMarker {
			continue
		}

		if tok.Kind == lexer.TokenPreprocessorLine {
			raw = append(raw, decomposeDirective(tok)...)
			continue
		}

		cl, ok := classify(in, toks, i, writes)
		if !ok {
			continue
		}

		raw = append(raw, rawToken{offset: tok.Span.Start, length: tok.Span.Len(), typ: cl.typ, mods: cl.mods})
	}

	for _, m := range conflicts.Markers {
		raw = append(raw, rawToken{offset: m.Start, length: m.Len(), typ: TypeRegexp})
	}

	sort.Slice(raw, func(a, b int) bool { return raw[a].offset < raw[b].offset })

	out := make([]Token, 0, len(raw))
	for _, r := range raw {
		p := sf.PositionFromOffset(r.offset)
		// r.length is a byte count; the LSP wire length, like the start
		// column, must be counted in UTF-16 code units (spec §8).
		utf16Len := sf.UTF16Len(position.Span{Start: r.offset, End: r.offset + r.length})
		out = append(out, Token{Line: p.Line - 1, Char: p.Column - 1, Length: utf16Len, Type: r.typ, Modifiers: r.mods})
	}

	return &Payload{Data: Encode(out)}
}

type classification struct {
	typ  TokenType
	mods uint32
}

// classify dispatches non-identifier token kinds directly and hands
// identifiers to classifyIdentifier's priority chain.
func classify(in *Input, toks []lexer.Token, i int, writes *WriteSites) (classification, bool) {
	tok := toks[i]

	switch tok.Kind {
	case lexer.TokenComment:
		return classification{typ: TypeComment}, true
	case lexer.TokenString:
		return classification{typ: TypeString}, true
	case lexer.TokenNumber:
		return classification{typ: TypeNumber}, true
	case lexer.TokenOperator, lexer.TokenPunctuation:
		return classification{typ: TypeOperator}, true
	case lexer.TokenIdentifier:
		return classifyIdentifier(in, toks, i, writes)
	default:
		return classification{}, false
	}
}

// classifyIdentifier implements spec §4.5 steps 2-12.
func classifyIdentifier(in *Input, toks []lexer.Token, i int, writes *WriteSites) (classification, bool) {
	tok := toks[i]
	name := tok.Value
	d := in.Defs

	if d != nil && d.IsType(name) {
		return classification{typ: TypeType}, true
	}

	if d != nil && d.IsKeyword(name) {
		return classification{typ: TypeKeyword}, true
	}

	if decl := declAtExact(in.Analysis, tok.Span.Start, tok.Span.Len()); decl != nil {
		if cl, ok := classifyDeclaration(decl, writes); ok {
			return cl, true
		}
	}

	callish := nextIsCall(toks, i)

	if callish && d != nil {
		if _, ok := d.Event(name); ok {
			return classification{typ: TypeFunction, mods: ModDefaultLibrary.Bit()}, true
		}
	}

	if callish && in.Pre != nil {
		if _, ok := in.Pre.FuncMacros[name]; ok {
			return classification{typ: TypeMacro}, true
		}
	}

	if callish && d != nil {
		if fn, ok := d.Function(name); ok {
			mods := ModDefaultLibrary.Bit()
			if fn.AnyDeprecated() {
				mods |= ModDeprecated.Bit()
			}

			return classification{typ: TypeFunction, mods: mods}, true
		}
	}

	if callish && in.Analysis != nil && in.Analysis.IsCallableFunction(name) {
		return classification{typ: TypeFunction}, true
	}

	if d != nil {
		if c, ok := d.Constant(name); ok {
			mods := ModDefaultLibrary.Bit()
			if c.Deprecated {
				mods |= ModDeprecated.Bit()
			}

			return classification{typ: TypeEnumMember, mods: mods}, true
		}
	}

	if name == "__LINE__" {
		return classification{typ: TypeMacro}, true
	}

	if in.Pre != nil {
		if _, ok := in.Pre.Macros[name]; ok {
			return classification{typ: TypeMacro}, true
		}
	}

	if in.Analysis != nil {
		if decl := in.Analysis.RefAt(tok.Span.Start); decl != nil {
			switch decl.Kind {
			case analyzer.DeclParam:
				return classification{typ: TypeParameter, mods: useModifiers(writes, decl, tok.Span.Start, true)}, true
			case analyzer.DeclVar:
				return classification{typ: TypeVariable, mods: useModifiers(writes, decl, tok.Span.Start, false)}, true
			}
		}
	}

	return classification{}, false
}

// classifyDeclaration handles spec §4.5 step 4: the declaring identifier
// of a function/event/param/var Decl. A declaration is never itself a
// write for modification-marking purposes, so Modification is never set
// here even though the token scan may also flag a var's own initializer
// as a write site.
func classifyDeclaration(decl *analyzer.Decl, writes *WriteSites) (classification, bool) {
	switch decl.Kind {
	case analyzer.DeclFunction, analyzer.DeclEvent:
		return classification{typ: TypeFunction}, true
	case analyzer.DeclParam:
		mods := uint32(0)
		if writes.ReadonlyParam(decl, decl.NameSpan.Start) {
			mods |= ModReadonly.Bit()
		}

		return classification{typ: TypeParameter, mods: mods}, true
	case analyzer.DeclVar:
		mods := uint32(0)
		if writes.ReadonlyVar(decl) {
			mods |= ModReadonly.Bit()
		}

		return classification{typ: TypeVariable, mods: mods}, true
	default:
		return classification{}, false
	}
}

func useModifiers(writes *WriteSites, decl *analyzer.Decl, offset int, isParam bool) uint32 {
	mods := uint32(0)

	readonly := writes.ReadonlyVar(decl)
	if isParam {
		readonly = writes.ReadonlyParam(decl, offset)
	}

	if readonly {
		mods |= ModReadonly.Bit()
	}

	if writes.IsWriteSite(offset) {
		mods |= ModModification.Bit()
	}

	return mods
}

// declAtExact returns the Decl whose declaring identifier exactly
// matches the token at [offset, offset+length) — spec §4.5 step 4's
// "exact substring equality in Decl.range and matching name length."
// State declarations are excluded: they aren't part of step 4's emission
// set, so their name falls through the rest of the chain like any other
// unresolved identifier.
func declAtExact(res *analyzer.Result, offset, length int) *analyzer.Decl {
	if res == nil {
		return nil
	}

	d := res.SymbolAt(offset)
	if d == nil || d.NameSpan.Start != offset || d.NameSpan.Len() != length {
		return nil
	}

	if d.Kind == analyzer.DeclState {
		return nil
	}

	return d
}

// nextIsCall reports whether the next non-comment token after i is "(".
func nextIsCall(toks []lexer.Token, i int) bool {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Kind == lexer.TokenComment {
			continue
		}

		return toks[j].Kind == lexer.TokenPunctuation && toks[j].Value == "("
	}

	return false
}

// decomposeDirective splits one TokenPreprocessorLine token (the lexer
// treats a whole directive line as one token) into its constituent
// semantic tokens, per spec §4.5's "preprocessor-line tokens are
// decomposed": the directive keyword as keyword, a #define name as
// macro, and an #include path (quotes included) as string.
func decomposeDirective(tok lexer.Token) []rawToken {
	text := tok.Value
	base := tok.Span.Start

	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}

	if i >= len(text) || text[i] != '#' {
		return nil
	}

	i++
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}

	kwStart := i
	for i < len(text) && isIdentChar(text[i]) {
		i++
	}

	if i == kwStart {
		return nil
	}

	keyword := text[kwStart:i]
	out := []rawToken{{offset: base + kwStart, length: i - kwStart, typ: TypeKeyword}}

	switch keyword {
	case "define":
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}

		nameStart := i
		for i < len(text) && isIdentChar(text[i]) {
			i++
		}

		if i > nameStart {
			out = append(out, rawToken{offset: base + nameStart, length: i - nameStart, typ: TypeMacro})
		}
	case "include":
		rest := text[i:]

		qs := strings.IndexAny(rest, "\"<")
		if qs < 0 {
			break
		}

		open := rest[qs]

		closeCh := byte('"')
		if open == '<' {
			closeCh = '>'
		}

		qe := strings.IndexByte(rest[qs+1:], closeCh)
		if qe < 0 {
			break
		}

		start := i + qs
		end := start + qe + 2 // include both delimiters

		out = append(out, rawToken{offset: base + start, length: end - start, typ: TypeString})
	}

	return out
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
