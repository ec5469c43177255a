// Package preprocessor implements the conditional-compilation-aware,
// C-style macro preprocessor of spec §4.1: #define/#undef, #include
// resolution, #if/#ifdef/#ifndef/#elif/#else/#endif with disabled-range
// computation, #error/#warning, __LINE__/__FILE__, and the #line
// directive (SPEC_FULL.md supplement).
//
// The directive walk (ordered #if stack, disabled-range accumulation) is
// grounded on the GLSL preprocessor reference's ifEntry/Skipping idiom
// (other_examples); the macro-expansion depth guard is grounded on the
// teacher's internal/parser/macro.go recursion-depth check.
package preprocessor

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/position"
)

// Macro is an object-like #define binding.
type Macro struct {
	Name string
	Body []lexer.Token
	Span position.Span
}

// FuncMacro is a function-like #define binding.
type FuncMacro struct {
	Name   string
	Params []string
	Body   []lexer.Token
	Span   position.Span
}

// IncludeEntry records one #include directive and its resolution.
type IncludeEntry struct {
	Raw      string // the path text between quotes or angle brackets
	Resolved string // absolute path, or "" if unresolved
	Angled   bool   // true for <path>, false for "path"
	Span     position.Span
}

// ConditionalBranch is one arm (#if/#elif/#else) of a conditional group.
type ConditionalBranch struct {
	DirectiveSpan position.Span
	BodySpan      position.Span
	Active        bool
}

// ConditionalGroup is one complete #if ... #endif chain.
type ConditionalGroup struct {
	Branches []ConditionalBranch
	EndSpan  position.Span
}

// ExpandedToken is one token of the macro-expanded stream. OriginSpan is
// the span of the source text that produced it: for tokens untouched by
// expansion this is their own span; for tokens introduced by a macro
// body, it is the span of the macro invocation that produced them.
type ExpandedToken struct {
	Token      lexer.Token
	OriginSpan position.Span
}

// Result is the complete output of one preprocessing run.
type Result struct {
	ExpandedTokens    []ExpandedToken
	Macros            map[string]*Macro
	FuncMacros        map[string]*FuncMacro
	Includes          []IncludeEntry
	MissingIncludes    []string
	DisabledRanges    []position.Span
	ConditionalGroups []ConditionalGroup
	Diagnostics       *diagnostics.Collection

	lineMarkers []lineMarker
}

// lineMarker records one `#line NUM` directive: starting at the physical
// line immediately below it, __LINE__ reports NUM instead of the real
// physical line number (SPEC_FULL.md preprocessor supplement).
type lineMarker struct {
	physicalLine int // first physical line the remap applies to
	declaredLine int // the line number that physical line reports as
}

// lineForOffset returns the line number __LINE__ should report for the
// token at offset: the physical line, unless a prior #line directive in
// this file remaps it.
func (r *Result) lineForOffset(sf *position.SourceFile, offset int) int {
	phys := sf.PositionFromOffset(offset).Line

	line := phys

	for _, m := range r.lineMarkers {
		if m.physicalLine > phys {
			break
		}

		line = m.declaredLine + (phys - m.physicalLine)
	}

	return line
}

// condFrame tracks one open #if...#endif chain while walking lines.
type condFrame struct {
	parentSkipping  bool
	skipElse        bool // a prior branch in this group already matched
	skipping        bool // the current branch should be treated as disabled
	hadElse         bool
	branchActive    bool
	branchBodyStart int
	directiveSpan   position.Span
	group           *ConditionalGroup
}

type lineInfo struct {
	span position.Span // covers the line text, excluding the trailing '\n'
	next int           // byte offset of the following line (after '\n'), or len(src)
}

// Process runs the full preprocessor over source, which is the content of
// the file at filePath. cfg supplies include search paths, initial
// macros and the expansion bound.
func Process(source string, cfg *config.Config, filePath string) *Result {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sf := position.NewSourceFile(filePath, source)
	diags := diagnostics.NewCollection()

	res := &Result{
		Macros:     make(map[string]*Macro),
		FuncMacros: make(map[string]*FuncMacro),
		Diagnostics: diags,
	}

	for name, body := range cfg.InitialMacros {
		res.Macros[name] = &Macro{Name: name, Body: lexer.Tokenize(body, nil)}
	}

	lines := splitLines(source)

	var stack []*condFrame

	var disabledAccum []position.Span

	baseDir := filepath.Dir(filePath)

	closeBranch := func(frame *condFrame, bodyEnd int) {
		bodySpan := position.Span{Start: frame.branchBodyStart, End: bodyEnd}
		frame.group.Branches = append(frame.group.Branches, ConditionalBranch{
			DirectiveSpan: frame.directiveSpan,
			BodySpan:      bodySpan,
			Active:        frame.branchActive,
		})

		if !frame.branchActive && bodySpan.Len() > 0 {
			disabledAccum = append(disabledAccum, bodySpan)
		}
	}

	currentlySkipping := func() bool {
		return len(stack) > 0 && stack[len(stack)-1].skipping
	}

	for _, li := range lines {
		lineText := sf.GetSpanText(li.span)
		trimmed := strings.TrimLeft(lineText, " \t")

		isDirective := strings.HasPrefix(trimmed, "#")
		if !isDirective {
			continue
		}

		leadingWS := len(lineText) - len(trimmed)
		hashOffset := li.span.Start + leadingWS
		rest := trimmed[1:]
		keyword, argText, argOffset := splitDirective(rest, hashOffset+1)

		switch keyword {
		case "if", "ifdef", "ifndef":
			parentSkip := currentlySkipping()

			var cond bool
			if !parentSkip {
				switch keyword {
				case "ifdef":
					cond = macroDefined(res, strings.TrimSpace(argText))
				case "ifndef":
					cond = !macroDefined(res, strings.TrimSpace(argText))
				default:
					v, err := evalConstExpr(argText, argOffset, res.Macros, res.FuncMacros)
					if err != nil {
						diags.Add(diagnostics.NewBuilder().Error().
							WithCategory(diagnostics.CategoryPreprocessorSyntax).
							WithMessagef("malformed #if expression: %v", err).
							WithSpan(li.span).WithSourceFile(filePath).Build())
					}

					cond = v != 0
				}
			}

			active := !parentSkip && cond
			frame := &condFrame{
				parentSkipping:  parentSkip,
				skipElse:        active,
				skipping:        !active,
				branchActive:    active,
				branchBodyStart: li.next,
				directiveSpan:   li.span,
				group:           &ConditionalGroup{},
			}
			stack = append(stack, frame)

		case "elif":
			if len(stack) == 0 {
				diags.Add(unmatchedDirective(filePath, li.span, "#elif"))
				continue
			}

			frame := stack[len(stack)-1]
			closeBranch(frame, li.span.Start)

			active := false
			if !frame.skipElse {
				v, err := evalConstExpr(argText, argOffset, res.Macros, res.FuncMacros)
				if err != nil {
					diags.Add(diagnostics.NewBuilder().Error().
						WithCategory(diagnostics.CategoryPreprocessorSyntax).
						WithMessagef("malformed #elif expression: %v", err).
						WithSpan(li.span).WithSourceFile(filePath).Build())
				}

				active = !frame.parentSkipping && v != 0
			}

			if active {
				frame.skipElse = true
			}

			frame.skipping = !active
			frame.branchActive = active
			frame.branchBodyStart = li.next
			frame.directiveSpan = li.span

		case "else":
			if len(stack) == 0 {
				diags.Add(unmatchedDirective(filePath, li.span, "#else"))
				continue
			}

			frame := stack[len(stack)-1]
			closeBranch(frame, li.span.Start)

			if frame.hadElse {
				diags.Add(diagnostics.NewBuilder().Error().
					WithCategory(diagnostics.CategoryPreprocessorSyntax).
					WithMessage("duplicate #else in conditional group").
					WithSpan(li.span).WithSourceFile(filePath).Build())
			}

			frame.hadElse = true
			active := !frame.skipElse && !frame.parentSkipping
			frame.skipping = !active
			frame.branchActive = active
			frame.branchBodyStart = li.next
			frame.directiveSpan = li.span

		case "endif":
			if len(stack) == 0 {
				diags.Add(unmatchedDirective(filePath, li.span, "#endif"))
				continue
			}

			frame := stack[len(stack)-1]
			closeBranch(frame, li.span.Start)
			frame.group.EndSpan = li.span
			res.ConditionalGroups = append(res.ConditionalGroups, *frame.group)
			stack = stack[:len(stack)-1]

		default:
			if currentlySkipping() {
				continue
			}

			switch keyword {
			case "define":
				defineMacro(res, argText, argOffset, li.span)
			case "undef":
				name := strings.TrimSpace(argText)
				delete(res.Macros, name)
				delete(res.FuncMacros, name)
			case "include":
				handleInclude(res, argText, argOffset, li.span, baseDir, cfg, diags, filePath)
			case "error":
				diags.Add(diagnostics.NewBuilder().Error().
					WithCategory(diagnostics.CategoryPreprocessorSyntax).
					WithMessagef("#error %s", strings.TrimSpace(argText)).
					WithSpan(li.span).WithSourceFile(filePath).Build())
			case "warning":
				diags.Add(diagnostics.NewBuilder().Warning().
					WithCategory(diagnostics.CategoryPreprocessorSyntax).
					WithMessagef("#warning %s", strings.TrimSpace(argText)).
					WithSpan(li.span).WithSourceFile(filePath).Build())
			case "line":
				// #line NUM ["file"] remaps the line number subsequent
				// __LINE__ expansions report; it never alters byte
				// offsets, disabled-range computation, or __FILE__
				// (SPEC_FULL.md supplement).
				if num, ok := parseLineNumber(argText); ok {
					directiveLine := sf.PositionFromOffset(li.span.Start).Line
					res.lineMarkers = append(res.lineMarkers, lineMarker{
						physicalLine: directiveLine + 1,
						declaredLine: num,
					})
				} else {
					diags.Add(diagnostics.NewBuilder().Error().
						WithCategory(diagnostics.CategoryPreprocessorSyntax).
						WithMessage("malformed #line: expected a line number").
						WithSpan(li.span).WithSourceFile(filePath).Build())
				}
			default:
				diags.Add(diagnostics.NewBuilder().Error().
					WithCategory(diagnostics.CategoryPreprocessorSyntax).
					WithMessagef("unknown preprocessor directive #%s", keyword).
					WithSpan(li.span).WithSourceFile(filePath).Build())
			}
		}
	}

	// Unbalanced conditionals: close every still-open frame at EOF and
	// report it (spec §4.1 failure semantics: treat as unbalanced,
	// continue with best-effort recovery).
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]
		eof := position.Span{Start: len(source), End: len(source)}
		closeBranch(frame, len(source))
		frame.group.EndSpan = eof
		res.ConditionalGroups = append(res.ConditionalGroups, *frame.group)

		diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryPreprocessorSyntax).
			WithMessage("unbalanced conditional: missing #endif, implicit #endif inserted at end of file").
			WithSpan(frame.directiveSpan).WithSourceFile(filePath).Build())
	}

	res.DisabledRanges = mergeSpans(disabledAccum)

	rawTokens := lexer.Tokenize(source, res.DisabledRanges)
	res.ExpandedTokens = expandTokens(rawTokens, res, cfg, sf, diags, filePath)

	return res
}

// splitLines slices source into lines, each tracking the byte offset of
// the line after it so body spans can be computed without re-scanning.
func splitLines(source string) []lineInfo {
	var out []lineInfo

	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			out = append(out, lineInfo{span: position.Span{Start: start, End: i}, next: i + 1})
			start = i + 1
		}
	}

	if start <= len(source) {
		out = append(out, lineInfo{span: position.Span{Start: start, End: len(source)}, next: len(source)})
	}

	return out
}

// splitDirective splits the text after '#' into its keyword and argument
// remainder, returning the byte offset (in the original source) at which
// the argument text begins.
func splitDirective(rest string, restOffset int) (keyword, arg string, argOffset int) {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}

	start := i
	for i < len(rest) && isIdentByte(rest[i]) {
		i++
	}

	keyword = rest[start:i]

	j := i
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}

	return keyword, rest[j:], restOffset + j
}

// parseLineNumber reads the leading decimal integer of a #line directive's
// argument text, ignoring an optional trailing quoted filename operand.
func parseLineNumber(argText string) (int, bool) {
	trimmed := strings.TrimLeft(argText, " \t")

	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}

	if i == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(trimmed[:i])
	if err != nil {
		return 0, false
	}

	return n, true
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func macroDefined(res *Result, name string) bool {
	if _, ok := res.Macros[name]; ok {
		return true
	}

	_, ok := res.FuncMacros[name]

	return ok
}

func unmatchedDirective(filePath string, span position.Span, directive string) diagnostics.Diagnostic {
	return diagnostics.NewBuilder().Error().
		WithCategory(diagnostics.CategoryPreprocessorSyntax).
		WithMessagef("%s without a matching #if", directive).
		WithSpan(span).WithSourceFile(filePath).Build()
}

// mergeSpans sorts and coalesces adjacent/overlapping spans so the
// Lexer's disabled-range scan (which assumes a sorted, non-overlapping
// list) sees the smallest possible set.
func mergeSpans(spans []position.Span) []position.Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := append([]position.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []position.Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}

			continue
		}

		out = append(out, s)
	}

	return out
}

func defineMacro(res *Result, argText string, argOffset int, lineSpan position.Span) {
	name, rest, isFunc, params, bodyOffset := parseDefineHead(argText, argOffset)
	if name == "" {
		return
	}

	body := lexer.Tokenize(rest, nil)
	offsetBodyTokens(body, bodyOffset)

	if isFunc {
		res.FuncMacros[name] = &FuncMacro{Name: name, Params: params, Body: body, Span: lineSpan}
		delete(res.Macros, name)
	} else {
		res.Macros[name] = &Macro{Name: name, Body: body, Span: lineSpan}
		delete(res.FuncMacros, name)
	}
}

// parseDefineHead splits "#define" argument text ("NAME(a,b) body" or
// "NAME body") into its name, function-like parameter list (if any) and
// the remaining replacement-list text together with that text's absolute
// source offset.
func parseDefineHead(arg string, argOffset int) (name, bodyText string, isFunc bool, params []string, bodyOffset int) {
	i := 0
	for i < len(arg) && isIdentByte(arg[i]) {
		i++
	}

	name = arg[:i]
	if name == "" {
		return "", "", false, nil, 0
	}

	if i < len(arg) && arg[i] == '(' {
		isFunc = true
		j := i + 1
		depth := 1
		paramStart := j

		for j < len(arg) && depth > 0 {
			switch arg[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					raw := arg[paramStart:j]
					if strings.TrimSpace(raw) != "" {
						for _, p := range strings.Split(raw, ",") {
							params = append(params, strings.TrimSpace(p))
						}
					}
				}
			}

			j++
		}

		i = j
	}

	for i < len(arg) && (arg[i] == ' ' || arg[i] == '\t') {
		i++
	}

	return name, arg[i:], isFunc, params, argOffset + i
}

func offsetBodyTokens(toks []lexer.Token, base int) {
	for i := range toks {
		toks[i].Span.Start += base
		toks[i].Span.End += base
	}
}

func handleInclude(res *Result, argText string, argOffset int, lineSpan position.Span, baseDir string, cfg *config.Config, diags *diagnostics.Collection, filePath string) {
	trimmed := strings.TrimSpace(argText)
	if len(trimmed) < 2 {
		diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryPreprocessorSyntax).
			WithMessage("malformed #include: expected \"path\" or <path>").
			WithSpan(lineSpan).WithSourceFile(filePath).Build())

		return
	}

	open, close := trimmed[0], trimmed[len(trimmed)-1]

	var angled bool

	switch {
	case open == '"' && close == '"':
		angled = false
	case open == '<' && close == '>':
		angled = true
	default:
		diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryPreprocessorSyntax).
			WithMessage("malformed #include: expected \"path\" or <path>").
			WithSpan(lineSpan).WithSourceFile(filePath).Build())

		return
	}

	raw := trimmed[1 : len(trimmed)-1]
	startInArg := strings.Index(argText, trimmed)
	pathSpan := position.Span{Start: argOffset + startInArg, End: argOffset + startInArg + len(trimmed)}

	resolved, ok := resolveInclude(raw, baseDir, cfg.IncludeSearchPaths)

	entry := IncludeEntry{Raw: raw, Angled: angled, Span: pathSpan}
	if ok {
		entry.Resolved = resolved
	} else {
		res.MissingIncludes = append(res.MissingIncludes, raw)
		diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryMissingInclude).
			WithMessagef("cannot find include file %q", raw).
			WithSpan(pathSpan).WithSourceFile(filePath).Build())
	}

	res.Includes = append(res.Includes, entry)
}

// resolveInclude tries the including file's own directory first, then
// each configured search path in order (spec §4.7 resolution order).
func resolveInclude(raw, baseDir string, searchPaths []string) (string, bool) {
	if filepath.IsAbs(raw) {
		if fileExists(raw) {
			return raw, true
		}

		return "", false
	}

	candidate := filepath.Join(baseDir, raw)
	if fileExists(candidate) {
		abs, err := filepath.Abs(candidate)
		if err == nil {
			return abs, true
		}

		return candidate, true
	}

	for _, sp := range searchPaths {
		candidate := filepath.Join(sp, raw)
		if fileExists(candidate) {
			abs, err := filepath.Abs(candidate)
			if err == nil {
				return abs, true
			}

			return candidate, true
		}
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
