package analyzer

import (
	"testing"

	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/parser"
)

func mustParse(t *testing.T, src string) *scriptAndOffsets {
	t.Helper()

	toks := lexer.Tokenize(src, nil)
	diags := diagnostics.NewCollection()
	script := parser.New(toks, diags, "test.lsl").Parse()

	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.All())
	}

	return &scriptAndOffsets{src: src, result: Analyze(script, nil)}
}

// scriptAndOffsets bundles a Result with its source text, so tests can
// find an identifier's offset with strings.Index instead of hand-tracking
// byte positions.
type scriptAndOffsets struct {
	src    string
	result *Result
}

func (s *scriptAndOffsets) offsetOf(needle string, occurrence int) int {
	start := 0

	for i := 0; i <= occurrence; i++ {
		idx := indexFrom(s.src, needle, start)
		if idx < 0 {
			return -1
		}

		if i == occurrence {
			return idx
		}

		start = idx + len(needle)
	}

	return -1
}

func indexFrom(s, needle string, from int) int {
	for i := from; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return i
		}
	}

	return -1
}

func TestFunctionCallResolvesRegardlessOfDeclarationOrder(t *testing.T) {
	// caller() calls helper() before helper is declared; LSL resolves
	// top-level functions regardless of textual order (unlike locals).
	src := `integer caller()
{
    return helper();
}

integer helper()
{
    return 1;
}

default
{
    state_entry()
    {
        caller();
    }
}`

	so := mustParse(t, src)

	callOffset := so.offsetOf("helper()", 0)

	d := so.result.RefAt(callOffset)
	if d == nil {
		t.Fatalf("expected helper() call to resolve")
	}

	if d.Kind != DeclFunction || d.Name != "helper" {
		t.Errorf("got %+v, want function decl helper", d)
	}
}

func TestParamShadowsGlobal(t *testing.T) {
	src := `integer counter;

integer bump(integer counter)
{
    return counter + 1;
}`

	so := mustParse(t, src)

	useOffset := so.offsetOf("counter + 1", 0)

	d := so.result.RefAt(useOffset)
	if d == nil {
		t.Fatalf("expected counter use inside bump to resolve")
	}

	if d.Kind != DeclParam {
		t.Errorf("got Kind=%v, want DeclParam (the parameter should shadow the global)", d.Kind)
	}
}

func TestLocalVarTieBreakPicksMostRecentDeclarationBeforeUse(t *testing.T) {
	src := `default
{
    state_entry()
    {
        integer i = 1;
        integer j = i;
        integer i = 2;
        integer k = i;
    }
}`

	so := mustParse(t, src)

	jInitOffset := so.offsetOf("= i;", 0) + 2
	kInitOffset := so.offsetOf("= i;", 1) + 2

	firstI := so.result.SymbolAt(so.offsetOf("integer i = 1", 0))
	secondI := so.result.SymbolAt(so.offsetOf("integer i = 2", 0))

	if firstI == nil || secondI == nil || firstI == secondI {
		t.Fatalf("expected two distinct 'i' declarations, got %+v / %+v", firstI, secondI)
	}

	jDecl := so.result.RefAt(jInitOffset)
	if jDecl != firstI {
		t.Errorf("j's initializer should bind to the first i")
	}

	kDecl := so.result.RefAt(kInitOffset)
	if kDecl != secondI {
		t.Errorf("k's initializer should bind to the second i")
	}
}

func TestLocalVarNotVisibleBeforeItsOwnDeclaration(t *testing.T) {
	src := `default
{
    state_entry()
    {
        x = 1;
        integer x;
    }
}`

	so := mustParse(t, src)

	useOffset := so.offsetOf("x = 1", 0)

	if d := so.result.RefAt(useOffset); d != nil {
		t.Errorf("expected the forward reference to x to be unresolved, got %+v", d)
	}
}

func TestSymbolAtCoversWholeDeclarationRange(t *testing.T) {
	src := `integer counter = 0;`

	so := mustParse(t, src)

	// any offset inside "integer counter = 0;" should resolve to the
	// same Decl, not only the identifier itself.
	start := so.offsetOf("integer counter", 0)

	d := so.result.SymbolAt(start)
	if d == nil || d.Name != "counter" {
		t.Fatalf("got %+v, want the counter VarDecl", d)
	}
}

func TestIncludeSymbolsAreVisibleAndHoisted(t *testing.T) {
	src := `default
{
    state_entry()
    {
        sharedHelper();
    }
}`

	toks := lexer.Tokenize(src, nil)
	diags := diagnostics.NewCollection()
	script := parser.New(toks, diags, "test.lsl").Parse()

	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.All())
	}

	result := Analyze(script, &IncludeSymbols{Functions: []string{"sharedHelper"}})

	callOffset := indexFrom(src, "sharedHelper()", 0)

	d := result.RefAt(callOffset)
	if d == nil || d.Name != "sharedHelper" {
		t.Fatalf("expected sharedHelper() to resolve via include symbols, got %+v", d)
	}
}

func TestUserDefinedFunctionsSetExcludesIncludeSymbols(t *testing.T) {
	src := `integer localFn()
{
    return 1;
}`

	toks := lexer.Tokenize(src, nil)
	diags := diagnostics.NewCollection()
	script := parser.New(toks, diags, "test.lsl").Parse()

	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.All())
	}

	result := Analyze(script, &IncludeSymbols{Functions: []string{"sharedHelper"}})

	if !result.Functions["localFn"] {
		t.Errorf("expected localFn to be recorded as a user-defined function")
	}

	if result.Functions["sharedHelper"] {
		t.Errorf("Functions should only record this file's own declarations")
	}
}
