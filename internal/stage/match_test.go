package stage

import (
	"testing"

	"github.com/vovakirdan/shape-clash/internal/core"
)

func TestMatchResolver(t *testing.T) {
	m := NewMatchResolver(10)

	tests := []struct {
		name  string
		a, b  Entity
		match bool
	}{
		{"same kind", Entity{Kind: core.KindSquare, Color: core.ColorRed}, Entity{Kind: core.KindSquare, Color: core.ColorBlue}, true},
		{"same color", Entity{Kind: core.KindSquare, Color: core.ColorGreen}, Entity{Kind: core.KindCircle, Color: core.ColorGreen}, true},
		{"both", Entity{Kind: core.KindCircle, Color: core.ColorViolet}, Entity{Kind: core.KindCircle, Color: core.ColorViolet}, true},
		{"neither", Entity{Kind: core.KindTriangle, Color: core.ColorRed}, Entity{Kind: core.KindCircle, Color: core.ColorOrange}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, ok := m.Resolve(tt.a, tt.b)
			if ok != tt.match {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.match)
			}
			if ok && delta != 10 {
				t.Errorf("delta = %d, want 10", delta)
			}
			if !ok && delta != 0 {
				t.Errorf("non-match delta = %d, want 0", delta)
			}
			if m.Matches(tt.b, tt.a) != tt.match {
				t.Error("Matches() is not symmetric")
			}
		})
	}
}
