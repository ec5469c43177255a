package defs

import "testing"

func TestMustLoadEmbedded(t *testing.T) {
	d := MustLoadEmbedded()

	if !d.IsType("integer") {
		t.Errorf("expected integer to be a built-in type")
	}

	if !d.IsKeyword("if") {
		t.Errorf("expected if to be a keyword")
	}

	c, ok := d.Constant("TRUE")
	if !ok || c.Type != "integer" {
		t.Errorf("expected TRUE constant of type integer, got %+v ok=%v", c, ok)
	}

	ev, ok := d.Event("touch_start")
	if !ok || len(ev.Params) != 1 || ev.Params[0].Type != "integer" {
		t.Errorf("unexpected touch_start event: %+v ok=%v", ev, ok)
	}

	fn, ok := d.Function("llSay")
	if !ok || len(fn.Overloads) != 1 || fn.Overloads[0].Returns != "void" {
		t.Errorf("unexpected llSay function: %+v ok=%v", fn, ok)
	}
}

func TestFunctionOverloadsAndDeprecation(t *testing.T) {
	d := MustLoadEmbedded()

	fn, ok := d.Function("llList2String")
	if !ok {
		t.Fatal("expected llList2String to be registered")
	}

	if len(fn.Overloads) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(fn.Overloads))
	}

	if !fn.AnyDeprecated() {
		t.Errorf("expected at least one deprecated overload")
	}

	if !d.IsDeprecated("llList2String") {
		t.Errorf("IsDeprecated should be true for llList2String")
	}

	twoArg := fn.ByArity(2)
	if len(twoArg) != 1 {
		t.Fatalf("expected exactly one 2-arg overload, got %d", len(twoArg))
	}

	if twoArg[0].Deprecated {
		t.Errorf("the 2-arg overload should not be the deprecated one")
	}
}

func TestIsDeprecatedConstant(t *testing.T) {
	d := MustLoadEmbedded()

	if !d.IsDeprecated("LAND_LEVEL") {
		t.Errorf("expected LAND_LEVEL constant to be deprecated")
	}

	if d.IsDeprecated("TRUE") {
		t.Errorf("did not expect TRUE to be deprecated")
	}
}
