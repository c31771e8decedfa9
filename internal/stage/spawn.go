package stage

import (
	"math/rand"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/core"
)

// BoundsProvider supplies the current spawn area. Hosts typically recompute it
// from the viewport every frame; the policy only reads it.
type BoundsProvider interface {
	SpawnArea() core.Bounds
}

// StaticBounds is a BoundsProvider that never changes.
type StaticBounds core.Bounds

// SpawnArea implements BoundsProvider.
func (b StaticBounds) SpawnArea() core.Bounds {
	return core.Bounds(b)
}

// DefaultBounds matches an unconfigured spawner: six units wide, just above
// a ten unit tall view.
var DefaultBounds = StaticBounds{XMin: -3, XMax: 3, SpawnY: 5.6}

// SpawnRequest asks the presentation/physics layer to instantiate a shape.
type SpawnRequest struct {
	Kind     core.Kind
	Color    core.Color
	Position core.Vec2
}

// SpawnPolicy decides when and what to spawn.
type SpawnPolicy struct {
	rng         *rand.Rand
	bounds      BoundsProvider
	accumulated float64 // Seconds since the last spawn
	deferred    int     // Ticks where a spawn was due but the cap blocked it
}

// NewSpawnPolicy creates a policy with a seeded RNG. A nil bounds provider
// uses DefaultBounds.
func NewSpawnPolicy(seed int64, bounds BoundsProvider) *SpawnPolicy {
	if bounds == nil {
		bounds = DefaultBounds
	}
	return &SpawnPolicy{
		rng:    rand.New(rand.NewSource(seed)),
		bounds: bounds,
	}
}

// Reset clears accumulated time and counters and reseeds the RNG.
func (p *SpawnPolicy) Reset(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
	p.accumulated = 0
	p.deferred = 0
}

// Accumulated returns the seconds gathered since the last spawn.
func (p *SpawnPolicy) Accumulated() float64 {
	return p.accumulated
}

// Deferred returns how many due spawns have been held back by the cap.
func (p *SpawnPolicy) Deferred() int {
	return p.deferred
}

// Decide adds elapsed seconds to the accumulator and returns a request once
// the interval has passed and the population is under the cap. A capped spawn
// is only delayed: the accumulator keeps growing and fires on the next
// eligible tick.
func (p *SpawnPolicy) Decide(elapsed float64, cfg config.StageConfig, liveCount int) (SpawnRequest, bool) {
	if elapsed > 0 {
		p.accumulated += elapsed
	}
	if p.accumulated < cfg.SpawnIntervalSeconds {
		return SpawnRequest{}, false
	}
	if liveCount >= cfg.MaxConcurrentEntities {
		p.deferred++
		return SpawnRequest{}, false
	}

	p.accumulated = 0
	return p.pick(cfg), true
}

// pick draws kind, color and position for one spawn.
func (p *SpawnPolicy) pick(cfg config.StageConfig) SpawnRequest {
	kinds := cfg.Kinds()
	kind := kinds[p.rng.Intn(len(kinds))]

	palette := core.PaletteSize(cfg.ColorPaletteSize)
	color := core.Color(p.rng.Intn(palette))

	area := p.bounds.SpawnArea().Normalized()
	x := area.XMin
	if w := area.Width(); w > 0 {
		x += p.rng.Float64() * w
	}

	return SpawnRequest{
		Kind:     kind,
		Color:    color,
		Position: core.Vec2{X: x, Y: area.SpawnY},
	}
}
