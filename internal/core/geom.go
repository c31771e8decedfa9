// Package core provides fundamental types and utilities for the shape-clash
// stage simulation. It contains no external dependencies to keep stage logic
// pure and testable.
package core

import "math"

// Vec2 is a point or direction in world units (Y points up).
type Vec2 struct {
	X, Y float64
}

// Bounds is the horizontal spawn band and spawn height supplied by the
// spawn-area provider.
type Bounds struct {
	XMin, XMax float64 // Horizontal spawn range
	SpawnY     float64 // Height at which new shapes appear
}

// Width returns the horizontal extent of the spawn band.
func (b Bounds) Width() float64 {
	return b.XMax - b.XMin
}

// Normalized returns b with XMin <= XMax.
func (b Bounds) Normalized() Bounds {
	if b.XMax < b.XMin {
		b.XMax = b.XMin
	}
	return b
}

// ViewportBounds derives spawn bounds from an orthographic viewport centered on
// the origin. halfHeight is half the visible height, aspect is width/height,
// sideMargin trims both edges and topOffset lifts the spawn line above the top.
func ViewportBounds(halfHeight, aspect, sideMargin, topOffset float64) Bounds {
	halfWidth := halfHeight * aspect
	return Bounds{
		XMin:   -halfWidth + sideMargin,
		XMax:   halfWidth - sideMargin,
		SpawnY: halfHeight + topOffset,
	}.Normalized()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Clamp01 restricts a float64 value to [0, 1].
func Clamp01(val float64) float64 {
	return ClampF(val, 0, 1)
}

// Sign returns -1, 0 or 1 matching the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// NearlyEqual compares floats with an absolute tolerance.
func NearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
