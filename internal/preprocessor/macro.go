package preprocessor

import (
	"path/filepath"
	"strconv"

	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/position"
)

// expander holds the shared, read-only context for one expandTokens run.
type expander struct {
	res      *Result
	cfg      *config.Config
	sf       *position.SourceFile
	diags    *diagnostics.Collection
	filePath string
}

// expandTokens performs macro substitution over the preprocessor's raw,
// disabled-range-filtered token stream (spec §4.1 "macro expansion").
// preprocessor-line tokens pass through untouched: their own contents
// (directive keyword, macro name, include path) are decomposed later by
// the semantic tokenizer, not expanded here.
func expandTokens(raw []lexer.Token, res *Result, cfg *config.Config, sf *position.SourceFile, diags *diagnostics.Collection, filePath string) []ExpandedToken {
	ctx := &expander{res: res, cfg: cfg, sf: sf, diags: diags, filePath: filePath}

	out := make([]ExpandedToken, 0, len(raw))

	i := 0
	for i < len(raw) {
		tok := raw[i]

		if tok.Kind != lexer.TokenIdentifier {
			out = append(out, ExpandedToken{Token: tok, OriginSpan: tok.Span})
			i++

			continue
		}

		budget := config.DefaultMaxExpandedTokens
		reported := false

		consumed, expanded := ctx.expandIdentifier(raw, i, map[string]bool{}, 0, &budget, &reported)
		out = append(out, expanded...)
		i += consumed
	}

	return out
}

// expandIdentifier expands the identifier token at tokens[i], recursively
// substituting object-like and function-like macros subject to a
// recursion-depth bound (spec §7.3) and a total-token budget shared
// across one top-level invocation's whole expansion chain. It returns
// how many tokens of the input stream were consumed (1 for an object-like
// macro or a bare identifier, spanning the full "(args)" for an invoked
// function-like macro) and the resulting expanded tokens.
func (ctx *expander) expandIdentifier(tokens []lexer.Token, i int, hide map[string]bool, depth int, budget *int, reported *bool) (int, []ExpandedToken) {
	tok := tokens[i]
	name := tok.Value

	switch name {
	case "__LINE__":
		line := ctx.res.lineForOffset(ctx.sf, tok.Span.Start)

		return 1, []ExpandedToken{{
			Token:      lexer.Token{Kind: lexer.TokenNumber, Value: strconv.Itoa(line), Span: tok.Span},
			OriginSpan: tok.Span,
		}}
	case "__FILE__":
		return 1, []ExpandedToken{{
			Token:      lexer.Token{Kind: lexer.TokenString, Value: strconv.Quote(filepath.Base(ctx.filePath)), Span: tok.Span},
			OriginSpan: tok.Span,
		}}
	}

	passthrough := func() (int, []ExpandedToken) {
		return 1, []ExpandedToken{{Token: tok, OriginSpan: tok.Span}}
	}

	if hide[name] {
		return passthrough()
	}

	if depth >= ctx.cfg.MacroExpansionLimit || *budget <= 0 {
		if !*reported {
			ctx.diags.Add(diagnostics.NewBuilder().Error().
				WithCategory(diagnostics.CategoryMacroExpansionOverflow).
				WithMessagef("macro expansion of %q exceeded the configured limit", name).
				WithSpan(tok.Span).WithSourceFile(ctx.filePath).Build())
			*reported = true
		}

		return passthrough()
	}

	if m, ok := ctx.res.Macros[name]; ok {
		*budget -= len(m.Body)

		newHide := cloneHideSet(hide)
		newHide[name] = true

		var result []ExpandedToken

		for j := 0; j < len(m.Body); {
			bt := m.Body[j]
			if bt.Kind == lexer.TokenIdentifier {
				c, exp := ctx.expandIdentifier(m.Body, j, newHide, depth+1, budget, reported)
				for _, e := range exp {
					e.OriginSpan = tok.Span
					result = append(result, e)
				}
				j += c

				continue
			}

			result = append(result, ExpandedToken{Token: bt, OriginSpan: tok.Span})
			j++
		}

		return 1, result
	}

	if fm, ok := ctx.res.FuncMacros[name]; ok {
		k := i + 1
		for k < len(tokens) && tokens[k].Kind == lexer.TokenComment {
			k++
		}

		if k >= len(tokens) || tokens[k].Value != "(" {
			return passthrough()
		}

		args, endIdx, ok2 := splitArgs(tokens, k)
		if !ok2 {
			ctx.diags.Add(diagnostics.NewBuilder().Error().
				WithCategory(diagnostics.CategoryPreprocessorSyntax).
				WithMessagef("unterminated invocation of macro %q", name).
				WithSpan(tok.Span).WithSourceFile(ctx.filePath).Build())

			return passthrough()
		}

		if len(args) == 1 && len(args[0]) == 0 && len(fm.Params) == 0 {
			args = nil
		}

		consumed := endIdx - i + 1

		if len(args) != len(fm.Params) {
			ctx.diags.Add(diagnostics.NewBuilder().Error().
				WithCategory(diagnostics.CategoryPreprocessorSyntax).
				WithMessagef("macro %q expects %d argument(s), got %d", name, len(fm.Params), len(args)).
				WithSpan(tok.Span).WithSourceFile(ctx.filePath).Build())

			var raw []ExpandedToken
			for _, t := range tokens[i : endIdx+1] {
				raw = append(raw, ExpandedToken{Token: t, OriginSpan: t.Span})
			}

			return consumed, raw
		}

		expandedArgs := make([][]ExpandedToken, len(args))
		for ai, a := range args {
			expandedArgs[ai] = ctx.expandArgTokens(a, hide, depth+1, budget, reported)
		}

		*budget -= len(fm.Body)

		newHide := cloneHideSet(hide)
		newHide[name] = true

		var result []ExpandedToken

		for j := 0; j < len(fm.Body); {
			bt := fm.Body[j]
			if bt.Kind == lexer.TokenIdentifier {
				if pidx := paramIndex(fm.Params, bt.Value); pidx >= 0 {
					result = append(result, expandedArgs[pidx]...)
					j++

					continue
				}

				c, exp := ctx.expandIdentifier(fm.Body, j, newHide, depth+1, budget, reported)
				for _, e := range exp {
					e.OriginSpan = tok.Span
					result = append(result, e)
				}
				j += c

				continue
			}

			result = append(result, ExpandedToken{Token: bt, OriginSpan: tok.Span})
			j++
		}

		return consumed, result
	}

	return passthrough()
}

// expandArgTokens expands macro references inside one already-scanned
// argument token list. Unlike macro-body tokens, argument tokens are
// literal source text written at the call site, so each keeps its own
// original span rather than inheriting the invocation's span.
func (ctx *expander) expandArgTokens(toks []lexer.Token, hide map[string]bool, depth int, budget *int, reported *bool) []ExpandedToken {
	var out []ExpandedToken

	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Kind == lexer.TokenIdentifier {
			c, exp := ctx.expandIdentifier(toks, i, hide, depth, budget, reported)
			out = append(out, exp...)
			i += c

			continue
		}

		out = append(out, ExpandedToken{Token: t, OriginSpan: t.Span})
		i++
	}

	return out
}

// splitArgs splits a function-like macro invocation's argument list,
// starting at the index of the opening '(', into comma-separated token
// groups at paren depth 1 (so nested calls' commas are not mistaken for
// argument separators). Commas nested inside a `[]`, `{}`, or `<>` pair
// (the LSL list/vector/rotation literal delimiters) are likewise not
// split points (spec §4.1: "commas inside (), [], {}, <> pairs, and
// string literals do not split"); string-literal commas are already
// never seen here, since the lexer emits a whole string as one token.
// It returns the index of the matching ')'.
func splitArgs(tokens []lexer.Token, openIdx int) (args [][]lexer.Token, closeIdx int, ok bool) {
	depth := 0
	nestDepth := 0

	var cur []lexer.Token

	for j := openIdx; j < len(tokens); j++ {
		t := tokens[j]

		switch {
		case t.Kind == lexer.TokenPunctuation && t.Value == "(":
			depth++
			if depth == 1 {
				continue
			}
		case t.Kind == lexer.TokenPunctuation && t.Value == ")":
			depth--
			if depth == 0 {
				args = append(args, cur)

				return args, j, true
			}
		case t.Kind == lexer.TokenPunctuation && (t.Value == "[" || t.Value == "{"):
			nestDepth++
		case t.Kind == lexer.TokenPunctuation && (t.Value == "]" || t.Value == "}"):
			nestDepth--
		case t.Kind == lexer.TokenOperator && t.Value == "<":
			nestDepth++
		case t.Kind == lexer.TokenOperator && t.Value == ">":
			if nestDepth > 0 {
				nestDepth--
			}
		case t.Kind == lexer.TokenPunctuation && t.Value == "," && depth == 1 && nestDepth == 0:
			args = append(args, cur)
			cur = nil

			continue
		}

		cur = append(cur, t)
	}

	return nil, 0, false
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}

	return -1
}

func cloneHideSet(hide map[string]bool) map[string]bool {
	out := make(map[string]bool, len(hide)+1)
	for k, v := range hide {
		out[k] = v
	}

	return out
}
