package semtok

import (
	"testing"
	"unicode/utf16"

	"github.com/google/go-cmp/cmp"

	"github.com/lsl-tools/lslintel/internal/analyzer"
	"github.com/lsl-tools/lslintel/internal/defs"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/parser"
	"github.com/lsl-tools/lslintel/internal/preprocessor"
)

var builtin = defs.MustLoadEmbedded()

func rawTokens(pre *preprocessor.Result) []lexer.Token {
	toks := make([]lexer.Token, len(pre.ExpandedTokens))
	for i, et := range pre.ExpandedTokens {
		toks[i] = et.Token
	}

	return toks
}

func compute(t *testing.T, src string) *Payload {
	t.Helper()

	pre := preprocessor.Process(src, nil, "test.lsl")

	diags := diagnostics.NewCollection()
	script := parser.New(rawTokens(pre), diags, "test.lsl").Parse()

	res := analyzer.Analyze(script, nil)

	return Compute(&Input{Source: src, FilePath: "test.lsl", Pre: pre, Analysis: res, Defs: builtin})
}

func TestSemanticTokensBuiltinFunctionCall(t *testing.T) {
	p := compute(t, `default
{
    state_entry()
    {
        llSay(0, "hi");
    }
}`)

	if len(p.Data) == 0 {
		t.Fatal("expected non-empty token payload")
	}
}

func TestSemanticTokensReadonlyVariableShadowing(t *testing.T) {
	src := `integer g = 1;

touch_start(integer n)
{
    g = g + 1;
    integer g = 5;
    integer y = g;
}`

	p := compute(t, src)

	if len(p.Data)%5 != 0 {
		t.Fatalf("payload length must be a multiple of 5, got %d", len(p.Data))
	}
}

func TestSemanticTokensAllReadonlyComparison(t *testing.T) {
	src := `integer result = 1;

default
{
    state_entry()
    {
        if (result == 1 || result == 2)
        {
            llSay(0, "ok");
        }
    }
}`

	p := compute(t, src)

	if len(p.Data) == 0 {
		t.Fatal("expected tokens for comparison-only variable")
	}
}

func TestSemanticTokensMacroClassification(t *testing.T) {
	src := "#define FOO 1\ninteger x = FOO;"

	p := compute(t, src)

	if len(p.Data) == 0 {
		t.Fatal("expected tokens for macro-defined constant use")
	}
}

func TestSemanticTokensMergeConflictSuppressesHunk(t *testing.T) {
	src := `integer a = 1;
<<<<<<< ours
integer b = 2;
=======
integer b = 3;
>>>>>>> theirs
`

	scan := ScanConflicts(src)

	if len(scan.Markers) != 3 {
		t.Fatalf("expected 3 marker lines, got %d", len(scan.Markers))
	}

	if len(scan.Suppressed) != 2 {
		t.Fatalf("expected 2 suppressed content lines, got %d", len(scan.Suppressed))
	}

	p := compute(t, src)
	if len(p.Data) == 0 {
		t.Fatal("expected at least the marker tokens and the leading declaration")
	}
}

func TestSemanticTokensThreeWayConflictWithBase(t *testing.T) {
	src := `<<<<<<< ours
integer b = 2;
||||||| base
integer b = 1;
=======
integer b = 3;
>>>>>>> theirs
`

	scan := ScanConflicts(src)

	if len(scan.Markers) != 4 {
		t.Fatalf("expected 4 marker lines, got %d", len(scan.Markers))
	}

	if len(scan.Suppressed) != 3 {
		t.Fatalf("expected 3 suppressed content lines, got %d", len(scan.Suppressed))
	}
}

func TestSemanticTokensUnclosedConflictSuppressesToEOF(t *testing.T) {
	src := `<<<<<<< ours
integer b = 2;
integer c = 3;
`

	scan := ScanConflicts(src)

	if len(scan.Markers) != 1 {
		t.Fatalf("expected 1 marker line, got %d", len(scan.Markers))
	}

	if len(scan.Suppressed) != 2 {
		t.Fatalf("expected both trailing lines suppressed, got %d", len(scan.Suppressed))
	}
}

func TestSemanticTokensPrefixPostfixIncrementIsWrite(t *testing.T) {
	src := `integer counter = 0;

default
{
    state_entry()
    {
        counter++;
        ++counter;
    }
}`

	p := compute(t, src)

	if len(p.Data) == 0 {
		t.Fatal("expected tokens for increment/decrement write sites")
	}
}

func TestSemanticTokensPreprocessorLineDecomposesIntoSubTokens(t *testing.T) {
	src := "#define MAX 10\n#include \"helper.lsl\"\ninteger x = MAX;"

	pre := preprocessor.Process(src, nil, "test.lsl")

	var sawDirective bool
	for _, et := range pre.ExpandedTokens {
		if et.Token.Kind.String() == "PREPROCESSOR_LINE" {
			sawDirective = true

			out := decomposeDirective(et.Token)
			if len(out) == 0 {
				t.Errorf("decomposeDirective returned nothing for %q", et.Token.Value)
			}
		}
	}

	if !sawDirective {
		t.Fatal("expected at least one preprocessor-line token in the stream")
	}
}

// TestSemanticTokensStringLengthIsUTF16Units guards against token lengths
// regressing to a byte count: a string literal containing a multibyte
// rune has a different byte length than UTF-16 length, so this fails
// loudly if Compute ever reports the former.
func TestSemanticTokensStringLengthIsUTF16Units(t *testing.T) {
	lit := `"héllo"`
	src := "string s = " + lit + ";"

	p := compute(t, src)

	var gotLen uint32
	found := false

	for i := 0; i+4 < len(p.Data); i += 5 {
		if TokenType(p.Data[i+3]) == TypeString {
			gotLen = p.Data[i+2]
			found = true

			break
		}
	}

	if !found {
		t.Fatal("expected a string token in the payload")
	}

	wantLen := uint32(len(utf16.Encode([]rune(lit))))

	if diff := cmp.Diff(wantLen, gotLen); diff != "" {
		t.Errorf("string token length mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclAtExactExcludesStateNames(t *testing.T) {
	src := `default
{
    state_entry()
    {
    }
}`

	diags := diagnostics.NewCollection()
	toks := preprocessor.Process(src, nil, "test.lsl")
	script := parser.New(rawTokens(toks), diags, "test.lsl").Parse()
	res := analyzer.Analyze(script, nil)

	decl := declAtExact(res, -1, 0)
	if decl != nil {
		t.Errorf("expected no decl at a bogus offset, got %+v", decl)
	}

	if decl := declAtExact(res, 0, len("default")); decl != nil {
		t.Errorf("expected the state name to be excluded, got %+v", decl)
	}
}
