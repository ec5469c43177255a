package semtok

import (
	"strings"

	"github.com/lsl-tools/lslintel/internal/analyzer"
	"github.com/lsl-tools/lslintel/internal/lexer"
)

// WriteSites is the result of the write-site scan (spec §4.5.1): which
// identifier occurrences are themselves writes, and per-declaration (with
// a per-name fallback) write counts and first-write offsets.
//
// The scan is purely token-based, not AST-based: it does not distinguish
// a declaring occurrence from a later reference, because it doesn't need
// to. `integer x = 5;` textually has "x" immediately followed by "=", so
// it is detected as a write like any other assignment — which is exactly
// what spec §4.5.1 rule (ii) wants ("exactly one write whose offset
// equals the declaring identifier's offset" is just this declaration's
// own initializer, counted the same way as any other write).
type WriteSites struct {
	offsets map[int]bool // identifier occurrences that are write sites

	countByDecl map[*analyzer.Decl]int
	firstByDecl map[*analyzer.Decl]int

	countByName map[string]int
	firstByName map[string]int
}

// ScanWriteSites walks toks once, classifying each identifier occurrence
// as a write site or not by looking at the run of operator tokens
// immediately before and after it, then resolves each write to a Decl via
// res (falling back to its name when resolution fails).
func ScanWriteSites(toks []lexer.Token, res *analyzer.Result) *WriteSites {
	ws := &WriteSites{
		offsets:     make(map[int]bool),
		countByDecl: make(map[*analyzer.Decl]int),
		firstByDecl: make(map[*analyzer.Decl]int),
		countByName: make(map[string]int),
		firstByName: make(map[string]int),
	}

	sig := significantTokens(toks)

	for i, tok := range sig {
		if tok.Kind != lexer.TokenIdentifier {
			continue
		}

		if !isWriteOccurrence(sig, i) {
			continue
		}

		off := tok.Span.Start
		ws.offsets[off] = true

		ws.countByName[tok.Value]++
		if first, ok := ws.firstByName[tok.Value]; !ok || off < first {
			ws.firstByName[tok.Value] = off
		}

		if res == nil {
			continue
		}

		decl := res.RefAt(off)
		if decl == nil {
			decl = res.SymbolAt(off)
		}

		if decl == nil {
			continue
		}

		ws.countByDecl[decl]++
		if first, ok := ws.firstByDecl[decl]; !ok || off < first {
			ws.firstByDecl[decl] = off
		}
	}

	return ws
}

func isWriteOccurrence(sig []lexer.Token, i int) bool {
	if fwd := operatorRunForward(sig, i); fwd != "" {
		if strings.HasPrefix(fwd, "++") || strings.HasPrefix(fwd, "--") || isAssignmentRun(fwd) {
			return true
		}
	}

	if bwd := operatorRunBackward(sig, i); bwd != "" {
		if strings.HasSuffix(bwd, "++") || strings.HasSuffix(bwd, "--") {
			return true
		}
	}

	return false
}

// operatorRunForward concatenates the values of the contiguous operator
// tokens immediately after sig[i].
func operatorRunForward(sig []lexer.Token, i int) string {
	var sb strings.Builder

	for j := i + 1; j < len(sig) && sig[j].Kind == lexer.TokenOperator; j++ {
		sb.WriteString(sig[j].Value)
	}

	return sb.String()
}

// operatorRunBackward concatenates the values of the contiguous operator
// tokens immediately before sig[i], in left-to-right source order.
func operatorRunBackward(sig []lexer.Token, i int) string {
	var parts []string

	for j := i - 1; j >= 0 && sig[j].Kind == lexer.TokenOperator; j-- {
		parts = append(parts, sig[j].Value)
	}

	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}

	return strings.Join(parts, "")
}

// isAssignmentRun decides whether a run of operator characters following
// an identifier denotes an assignment, per spec §4.5.1: scan for a
// qualifying '=' character, excluding the '=' of "==" / "!=" and the '='
// of "<=" / ">=", while still accepting "<<=" and ">>=".
func isAssignmentRun(run string) bool {
	for k := 0; k < len(run); k++ {
		if run[k] != '=' {
			continue
		}

		var preceding, following byte
		if k > 0 {
			preceding = run[k-1]
		}
		if k+1 < len(run) {
			following = run[k+1]
		}

		if preceding == '=' || preceding == '!' || following == '=' {
			continue
		}

		if preceding == '<' && !(k >= 2 && run[k-2] == '<') {
			continue
		}

		if preceding == '>' && !(k >= 2 && run[k-2] == '>') {
			continue
		}

		return true
	}

	return false
}

// significantTokens drops comment and preprocessor-line tokens, which are
// trivia for the purposes of finding contiguous operator runs.
func significantTokens(toks []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(toks))

	for _, t := range toks {
		if t.Kind == lexer.TokenComment || t.Kind == lexer.TokenPreprocessorLine {
			continue
		}

		out = append(out, t)
	}

	return out
}

// IsWriteSite reports whether the identifier occurrence at offset is
// itself a write, for the Modification modifier (spec §4.5.1).
func (ws *WriteSites) IsWriteSite(offset int) bool {
	return ws.offsets[offset]
}

func (ws *WriteSites) lookup(decl *analyzer.Decl, name string) (count, first int, ok bool) {
	if decl != nil {
		if c, has := ws.countByDecl[decl]; has {
			return c, ws.firstByDecl[decl], true
		}
	}

	if c, has := ws.countByName[name]; has {
		return c, ws.firstByName[name], true
	}

	return 0, 0, false
}

// ReadonlyVar reports whether decl (a local or global var) is readonly at
// every use: zero writes, or its only write is its own declaring
// identifier (spec §4.5.1 var rule).
func (ws *WriteSites) ReadonlyVar(decl *analyzer.Decl) bool {
	count, first, ok := ws.lookup(decl, decl.Name)
	if !ok || count == 0 {
		return true
	}

	return count == 1 && first == decl.NameSpan.Start
}

// ReadonlyParam reports whether a use at offset precedes decl's (a
// parameter) first write (spec §4.5.1 param rule).
func (ws *WriteSites) ReadonlyParam(decl *analyzer.Decl, offset int) bool {
	count, first, ok := ws.lookup(decl, decl.Name)
	if !ok || count == 0 {
		return true
	}

	return offset < first
}
