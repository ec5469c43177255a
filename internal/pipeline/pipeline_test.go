package pipeline

import (
	"context"
	"testing"

	"github.com/lsl-tools/lslintel/internal/defs"
	"github.com/lsl-tools/lslintel/internal/includes"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	loader, err := includes.NewLoader(nil, 16)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	t.Cleanup(func() { loader.Close() })

	return New(defs.MustLoadEmbedded(), loader, nil, nil)
}

func TestRunProducesTokensForSimpleScript(t *testing.T) {
	p := newTestPipeline(t)

	res := p.Run(context.Background(), &Request{
		SourceText:  "default\n{\n    state_entry()\n    {\n        llSay(0, \"hi\");\n    }\n}",
		DocumentURI: "test.lsl",
	})

	if res.RunID == "" {
		t.Error("expected a non-empty run ID")
	}

	if res.Tokens == nil || len(res.Tokens.Data) == 0 {
		t.Fatal("expected a non-empty token payload")
	}

	if len(res.Tokens.Data)%5 != 0 {
		t.Fatalf("token payload length must be a multiple of 5, got %d", len(res.Tokens.Data))
	}
}

func TestRunReportsMissingInclude(t *testing.T) {
	p := newTestPipeline(t)

	res := p.Run(context.Background(), &Request{
		SourceText:  "#include \"does_not_exist.lsl\"\ninteger x = 1;",
		DocumentURI: "test.lsl",
	})

	var sawMissing bool
	for _, d := range res.Diagnostics {
		if d.Category.String() == "missing-include" {
			sawMissing = true
		}
	}

	if !sawMissing {
		t.Errorf("expected a missing-include diagnostic, got %+v", res.Diagnostics)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	p := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Run(ctx, &Request{SourceText: "integer x = 1;", DocumentURI: "test.lsl"})

	if res.Tokens != nil {
		t.Errorf("expected no tokens for a cancelled request, got %+v", res.Tokens)
	}

	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics for a cancelled request, got %+v", res.Diagnostics)
	}
}

func TestRunIsIdempotentAcrossInvocations(t *testing.T) {
	p := newTestPipeline(t)

	src := "integer g = 1;\n\ntouch_start(integer n)\n{\n    g = g + 1;\n}"

	first := p.Run(context.Background(), &Request{SourceText: src, DocumentURI: "test.lsl"})
	second := p.Run(context.Background(), &Request{SourceText: src, DocumentURI: "test.lsl"})

	if len(first.Tokens.Data) != len(second.Tokens.Data) {
		t.Fatalf("expected identical payload lengths, got %d and %d", len(first.Tokens.Data), len(second.Tokens.Data))
	}

	for i := range first.Tokens.Data {
		if first.Tokens.Data[i] != second.Tokens.Data[i] {
			t.Fatalf("payload diverged at index %d: %d != %d", i, first.Tokens.Data[i], second.Tokens.Data[i])
		}
	}
}

func TestRunPerRequestMacroOverrideDoesNotLeak(t *testing.T) {
	p := newTestPipeline(t)

	first := p.Run(context.Background(), &Request{
		SourceText:    "integer x = FOO;",
		DocumentURI:   "a.lsl",
		InitialMacros: map[string]string{"FOO": "1"},
	})

	second := p.Run(context.Background(), &Request{
		SourceText:  "integer x = FOO;",
		DocumentURI: "b.lsl",
	})

	if p.BaseCfg.InitialMacros["FOO"] != "" {
		t.Errorf("per-request macro override leaked into the pipeline's base config: %+v", p.BaseCfg.InitialMacros)
	}

	_ = first
	_ = second
}
