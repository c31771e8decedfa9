package core

import "testing"

func TestPaletteSizeClamped(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{0, 3},
		{3, 3},
		{5, 5},
		{7, 7},
		{12, 7},
	}

	for _, tt := range tests {
		if got := PaletteSize(tt.in); got != tt.expected {
			t.Errorf("PaletteSize(%d) = %d, expected %d", tt.in, got, tt.expected)
		}
	}
}

func TestColorTextRoundTrip(t *testing.T) {
	for c := ColorRed; c <= ColorViolet; c++ {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) failed: %v", c, err)
		}
		var back Color
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if back != c {
			t.Errorf("round trip %v -> %q -> %v", c, text, back)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"square", KindSquare, true},
		{" Triangle ", KindTriangle, true},
		{"CIRCLE", KindCircle, true},
		{"hexagon", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKindUnmarshalTextRejectsUnknown(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("star")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestInputFrameClear(t *testing.T) {
	f := NewInputFrame()
	f.Fire(1.5)
	f.Set(ActionPause)

	if !f.Has(ActionFire) || !f.Has(ActionPause) {
		t.Fatal("expected fire and pause to be set")
	}
	if len(f.FireX) != 1 || f.FireX[0] != 1.5 {
		t.Fatalf("FireX = %v, expected [1.5]", f.FireX)
	}

	f.Clear()
	if f.Has(ActionFire) || len(f.FireX) != 0 {
		t.Error("Clear should reset actions and fire positions")
	}
}
