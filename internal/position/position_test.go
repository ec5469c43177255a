package position

import "testing"

func TestPositionFromOffset(t *testing.T) {
	src := "line one\nline two\nline three"
	sf := NewSourceFile("test.lsl", src)

	tests := []struct {
		offset     int
		wantLine   int
		wantColumn int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{9, 2, 1},
		{14, 2, 6},
		{len(src), 3, 11},
	}

	for _, tt := range tests {
		got := sf.PositionFromOffset(tt.offset)
		if got.Line != tt.wantLine || got.Column != tt.wantColumn {
			t.Errorf("PositionFromOffset(%d) = %d:%d, want %d:%d",
				tt.offset, got.Line, got.Column, tt.wantLine, tt.wantColumn)
		}
	}
}

func TestPositionFromOffsetUTF16Column(t *testing.T) {
	// U+1F600 (😀) is a 4-byte UTF-8 sequence encoded as a UTF-16 surrogate pair.
	src := "a😀b"
	sf := NewSourceFile("u.lsl", src)

	got := sf.PositionFromOffset(len(src))
	if got.Column != 5 { // a(1) + 😀(2 UTF-16 units) + b(1) + 1-based
		t.Errorf("Column = %d, want 5", got.Column)
	}
}

func TestSpanOverlapsAndUnion(t *testing.T) {
	a := Span{Start: 0, End: 10}
	b := Span{Start: 5, End: 15}
	c := Span{Start: 20, End: 30}

	if !a.Overlaps(b) {
		t.Errorf("expected a to overlap b")
	}
	if a.Overlaps(c) {
		t.Errorf("did not expect a to overlap c")
	}

	u := a.Union(b)
	if u.Start != 0 || u.End != 15 {
		t.Errorf("Union = %+v, want {0 15}", u)
	}
}

func TestGetLine(t *testing.T) {
	sf := NewSourceFile("x.lsl", "abc\ndef\nghi")
	if got := sf.GetLine(2); got != "def" {
		t.Errorf("GetLine(2) = %q, want %q", got, "def")
	}
	if got := sf.GetLine(3); got != "ghi" {
		t.Errorf("GetLine(3) = %q, want %q", got, "ghi")
	}
	if got := sf.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}
}
