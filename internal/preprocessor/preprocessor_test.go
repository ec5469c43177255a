package preprocessor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lsl-tools/lslintel/internal/config"
	"github.com/lsl-tools/lslintel/internal/lexer"
)

func values(res *Result) []string {
	var out []string

	for _, et := range res.ExpandedTokens {
		out = append(out, et.Token.Value)
	}

	return out
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	src := "#define WIDTH 10\ninteger x = WIDTH;"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics.All())
	}

	got := values(res)
	want := []string{"#define WIDTH 10", "integer", "x", "=", "10", ";"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFunctionLikeMacroExpansion(t *testing.T) {
	src := "#define ADD(a, b) a + b\ninteger y = ADD(1, 2);"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics.All())
	}

	got := values(res)
	want := []string{"#define ADD(a, b) a + b", "integer", "y", "=", "1", "+", "2", ";"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIfZeroDisablesBody(t *testing.T) {
	src := "#if 0\ninteger dead = 1;\n#endif\ninteger live = 2;"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	for _, et := range res.ExpandedTokens {
		if et.Token.Value == "dead" {
			t.Errorf("did not expect a token from the disabled branch")
		}
	}

	if len(res.DisabledRanges) != 1 {
		t.Fatalf("expected exactly one disabled range, got %d", len(res.DisabledRanges))
	}

	if len(res.ConditionalGroups) != 1 || len(res.ConditionalGroups[0].Branches) != 1 {
		t.Fatalf("expected one conditional group with one branch, got %+v", res.ConditionalGroups)
	}

	if res.ConditionalGroups[0].Branches[0].Active {
		t.Errorf("expected the #if 0 branch to be inactive")
	}
}

func TestIfElseChoosesActiveBranch(t *testing.T) {
	src := "#define DEBUG 1\n#if DEBUG\ninteger mode = 1;\n#else\ninteger mode = 0;\n#endif"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	var sawOne, sawZero bool

	for _, et := range res.ExpandedTokens {
		if et.Token.Kind == lexer.TokenNumber {
			if et.Token.Value == "1" {
				sawOne = true
			}

			if et.Token.Value == "0" {
				sawZero = true
			}
		}
	}

	if !sawOne {
		t.Errorf("expected the DEBUG-true branch to be active")
	}

	if sawZero {
		t.Errorf("did not expect the #else branch's token")
	}
}

func TestUnbalancedConditionalReported(t *testing.T) {
	src := "#if 1\ninteger x = 1;"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if !res.Diagnostics.HasErrors() {
		t.Fatalf("expected an unbalanced-conditional diagnostic")
	}

	if len(res.ConditionalGroups) != 1 {
		t.Fatalf("expected the dangling group to still be closed at EOF, got %d groups", len(res.ConditionalGroups))
	}
}

func TestMissingIncludeReported(t *testing.T) {
	src := `#include "nope_does_not_exist.lsl"`
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if len(res.MissingIncludes) != 1 || res.MissingIncludes[0] != "nope_does_not_exist.lsl" {
		t.Fatalf("expected one missing include, got %+v", res.MissingIncludes)
	}

	if !res.Diagnostics.HasErrors() {
		t.Fatalf("expected a missing-include diagnostic")
	}
}

func TestMacroExpansionOverflowGuard(t *testing.T) {
	// A chain of distinct macros (A0 -> A1 -> ... -> A9) defeats the
	// hideset-based self-reference guard, so a shallow configured depth
	// limit must be the thing that stops the expansion.
	var src strings.Builder

	for i := 0; i < 9; i++ {
		fmt.Fprintf(&src, "#define A%d A%d\n", i, i+1)
	}

	src.WriteString("#define A9 9\ninteger x = A0;")

	cfg := config.DefaultConfig()
	cfg.MacroExpansionLimit = 5

	res := Process(src.String(), cfg, "test.lsl")

	found := false

	for _, d := range res.Diagnostics.All() {
		if d.Category.String() == "macro-expansion-overflow" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a macro-expansion-overflow diagnostic for a macro chain deeper than the limit")
	}
}

func TestDunderLineExpandsToLineNumber(t *testing.T) {
	src := "integer a = 1;\ninteger b = __LINE__;"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	var got string

	for i, et := range res.ExpandedTokens {
		if et.Token.Kind == lexer.TokenIdentifier && et.Token.Value == "b" {
			// b = __LINE__ ;  -> the number token follows '='
			got = res.ExpandedTokens[i+2].Token.Value
		}
	}

	if got != "2" {
		t.Errorf("__LINE__ expanded to %q, want \"2\"", got)
	}
}

func TestLineDirectiveRemapsDunderLine(t *testing.T) {
	src := "integer a = 1;\n#line 100\ninteger b = __LINE__;"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics.All())
	}

	var got string

	for i, et := range res.ExpandedTokens {
		if et.Token.Kind == lexer.TokenIdentifier && et.Token.Value == "b" {
			got = res.ExpandedTokens[i+2].Token.Value
		}
	}

	if got != "100" {
		t.Errorf("__LINE__ expanded to %q, want \"100\"", got)
	}
}

func TestFunctionMacroArgSplittingIgnoresBracketedCommas(t *testing.T) {
	src := "#define FIRST(a, b) a\ninteger x = FIRST([1, 2], 3);"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors (arity mismatch would mean the commas inside [] split the args): %+v", res.Diagnostics.All())
	}

	got := values(res)
	want := []string{"#define FIRST(a, b) a", "integer", "x", "=", "[", "1", ",", "2", "]", ";"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFunctionMacroArgSplittingIgnoresVectorLiteralCommas(t *testing.T) {
	src := "#define FIRST(a, b) a\nvector v = FIRST(<1, 2, 3>, 0);"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors (arity mismatch would mean the commas inside <> split the args): %+v", res.Diagnostics.All())
	}

	got := values(res)
	want := []string{"#define FIRST(a, b) a", "vector", "v", "=", "<", "1", ",", "2", ",", "3", ">", ";"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFunctionMacroArgSplittingComparisonOperatorsDoNotNest(t *testing.T) {
	// FIRST(a<=b, c) must still split into two arguments: "<=" is one
	// operator token, not an opening '<' that starts vector-literal
	// nesting.
	src := "#define FIRST(a, b) a\ninteger x = FIRST(a <= b, c);"
	res := Process(src, config.DefaultConfig(), "test.lsl")

	found := false

	for _, d := range res.Diagnostics.All() {
		if d.Category.String() == "preprocessor-syntax" && strings.Contains(d.Message, "expects 2 argument") {
			found = true
		}
	}

	if found {
		t.Fatalf("did not expect an arity diagnostic: %+v", res.Diagnostics.All())
	}
}
