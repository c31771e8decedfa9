package stage

import "github.com/vovakirdan/shape-clash/internal/core"

// EntityID identifies a fallable entity for the lifetime of one run.
// Zero is never assigned.
type EntityID uint64

// GravityBoost is a temporary fall-speed increase left by a projectile hit.
type GravityBoost struct {
	Extra            float64 // Added to the base gravity scale
	RemainingSeconds float64 // Counted down by Tick while running
}

// Entity is a single falling shape.
type Entity struct {
	ID               EntityID
	Kind             core.Kind
	Color            core.Color
	BaseGravityScale float64
	Boost            *GravityBoost // nil when not boosted

	// MarkedForRemoval is set on the copy handed back by a take. Entities still
	// inside the registry never carry it.
	MarkedForRemoval bool
}

// GravityScale returns the fall-speed multiplier the physics layer should apply.
func (e Entity) GravityScale() float64 {
	if e.Boost != nil {
		return e.BaseGravityScale + e.Boost.Extra
	}
	return e.BaseGravityScale
}

// Boosted reports whether a gravity boost is active.
func (e Entity) Boosted() bool {
	return e.Boost != nil
}
