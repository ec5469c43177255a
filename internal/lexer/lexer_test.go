package lexer

import (
	"testing"

	"github.com/lsl-tools/lslintel/internal/position"
)

func TestBasicTokens(t *testing.T) {
	input := `integer x = 1 + 2; // add
llSay(0, "hi");`

	tests := []struct {
		kind  TokenKind
		value string
	}{
		{TokenIdentifier, "integer"},
		{TokenIdentifier, "x"},
		{TokenOperator, "="},
		{TokenNumber, "1"},
		{TokenOperator, "+"},
		{TokenNumber, "2"},
		{TokenPunctuation, ";"},
		{TokenComment, "// add"},
		{TokenIdentifier, "llSay"},
		{TokenPunctuation, "("},
		{TokenNumber, "0"},
		{TokenPunctuation, ","},
		{TokenString, `"hi"`},
		{TokenPunctuation, ")"},
		{TokenPunctuation, ";"},
	}

	l := New(input)

	for i, want := range tests {
		tok := l.Next()
		if tok.Kind != want.kind || tok.Value != want.value {
			t.Fatalf("token[%d] = {%s %q}, want {%s %q}", i, tok.Kind, tok.Value, want.kind, want.value)
		}
	}

	if eof := l.Next(); eof.Kind != TokenEOF {
		t.Fatalf("expected EOF, got %s", eof.Kind)
	}
}

func TestLongestMatchOperators(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"a++", []string{"a", "++"}},
		{"a+ +", []string{"a", "+", "+"}},
		{"a<<=1", []string{"a", "<<=", "1"}},
		{"a<<1", []string{"a", "<<", "1"}},
		{"a<=1", []string{"a", "<=", "1"}},
		{"a==b", []string{"a", "==", "b"}},
		{"a!=b", []string{"a", "!=", "b"}},
	}

	for _, c := range cases {
		toks := Tokenize(c.src, nil)

		var got []string
		for _, tok := range toks {
			got = append(got, tok.Value)
		}

		if len(got) != len(c.want) {
			t.Fatalf("%q: got %v, want %v", c.src, got, c.want)
		}

		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%q: token[%d] = %q, want %q", c.src, i, got[i], c.want[i])
			}
		}
	}
}

func TestPreprocessorLineIsOneToken(t *testing.T) {
	src := "#define FOO 1\nFOO"
	toks := Tokenize(src, nil)

	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(toks), toks)
	}

	if toks[0].Kind != TokenPreprocessorLine || toks[0].Value != "#define FOO 1" {
		t.Errorf("token[0] = %+v, want preprocessor-line '#define FOO 1'", toks[0])
	}

	if toks[1].Kind != TokenIdentifier || toks[1].Value != "FOO" {
		t.Errorf("token[1] = %+v, want identifier FOO", toks[1])
	}
}

func TestDisabledRangeProducesNoTokens(t *testing.T) {
	src := "#if 0\ninteger x = 1;\n#endif\ninteger y = 2;"
	// "integer x = 1;\n" is the disabled body between the two directives.
	bodyStart := len("#if 0\n")
	bodyEnd := bodyStart + len("integer x = 1;\n")
	disabled := []position.Span{{Start: bodyStart, End: bodyEnd}}

	toks := Tokenize(src, disabled)

	for _, tok := range toks {
		if tok.Span.Start >= bodyStart && tok.Span.End <= bodyEnd {
			t.Errorf("unexpected token inside disabled range: %+v", tok)
		}
	}

	// The two directive lines and the trailing live statement must still
	// be tokenized.
	var sawDefine, sawEndif, sawY bool

	for _, tok := range toks {
		switch {
		case tok.Kind == TokenPreprocessorLine && tok.Value == "#if 0":
			sawDefine = true
		case tok.Kind == TokenPreprocessorLine && tok.Value == "#endif":
			sawEndif = true
		case tok.Kind == TokenIdentifier && tok.Value == "y":
			sawY = true
		}
	}

	if !sawDefine || !sawEndif || !sawY {
		t.Errorf("missing expected live tokens: define=%v endif=%v y=%v", sawDefine, sawEndif, sawY)
	}
}

func TestWrappedIf1EqualsUnwrapped(t *testing.T) {
	plain := `integer x = 1;`
	wrapped := "#if 1\ninteger x = 1;\n#endif"

	plainToks := Tokenize(plain, nil)
	// No disabled range for #if 1 (condition true): only directive
	// tokens are added around identical content tokens.
	wrappedToks := Tokenize(wrapped, nil)

	// Strip the two directive tokens to compare the body.
	var body []Token

	for _, tok := range wrappedToks {
		if tok.Kind != TokenPreprocessorLine {
			body = append(body, tok)
		}
	}

	if len(body) != len(plainToks) {
		t.Fatalf("got %d body tokens, want %d", len(body), len(plainToks))
	}

	for i := range body {
		if body[i].Kind != plainToks[i].Kind || body[i].Value != plainToks[i].Value {
			t.Errorf("body[%d] = %+v, want %+v", i, body[i], plainToks[i])
		}
	}
}
