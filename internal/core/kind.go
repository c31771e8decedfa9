package core

import (
	"fmt"
	"strings"
)

// Kind is the geometric type of a falling shape.
type Kind uint8

const (
	KindSquare Kind = iota
	KindTriangle
	KindCircle
)

// AllKinds lists every kind in declaration order.
var AllKinds = []Kind{KindSquare, KindTriangle, KindCircle}

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSquare:
		return "square"
	case KindTriangle:
		return "triangle"
	case KindCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k <= KindCircle
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return KindSquare, true
	case "triangle":
		return KindTriangle, true
	case "circle":
		return KindCircle, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("core: invalid kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so kinds can be
// written by name in YAML stage files.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("core: unknown kind %q", text)
	}
	*k = parsed
	return nil
}
