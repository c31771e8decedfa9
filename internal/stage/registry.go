package stage

import (
	"sort"

	"github.com/vovakirdan/shape-clash/internal/core"
)

// Registry owns the live entities of one run, keyed by stable id.
// Removal is a take: it returns the entity once and reports absence on every
// later call for the same id.
type Registry struct {
	entities map[EntityID]*Entity
	nextID   EntityID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[EntityID]*Entity),
		nextID:   1,
	}
}

// Spawn creates and registers a new entity. Ids are never reused within a run.
func (r *Registry) Spawn(kind core.Kind, color core.Color, gravityScale float64) Entity {
	e := &Entity{
		ID:               r.nextID,
		Kind:             kind,
		Color:            color,
		BaseGravityScale: gravityScale,
	}
	r.nextID++
	r.entities[e.ID] = e
	return *e
}

// Get returns a copy of the entity with the given id.
func (r *Registry) Get(id EntityID) (Entity, bool) {
	e, ok := r.entities[id]
	if !ok {
		return Entity{}, false
	}
	return e.snapshot(), true
}

// Contains reports whether id is live.
func (r *Registry) Contains(id EntityID) bool {
	_, ok := r.entities[id]
	return ok
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Take removes the entity and returns it marked for removal.
func (r *Registry) Take(id EntityID) (Entity, bool) {
	e, ok := r.entities[id]
	if !ok {
		return Entity{}, false
	}
	delete(r.entities, id)
	out := e.snapshot()
	out.MarkedForRemoval = true
	return out, true
}

// TakePair removes both entities, or neither if either one is missing.
func (r *Registry) TakePair(a, b EntityID) (Entity, Entity, bool) {
	if a == b || !r.Contains(a) || !r.Contains(b) {
		return Entity{}, Entity{}, false
	}
	ea, _ := r.Take(a)
	eb, _ := r.Take(b)
	return ea, eb, true
}

// SetBoost attaches a gravity boost, replacing any boost already running.
func (r *Registry) SetBoost(id EntityID, extra, seconds float64) bool {
	e, ok := r.entities[id]
	if !ok {
		return false
	}
	if seconds <= 0 {
		e.Boost = nil
		return true
	}
	e.Boost = &GravityBoost{Extra: extra, RemainingSeconds: seconds}
	return true
}

// AdvanceBoosts counts boosts down by dt and drops the expired ones.
// Returns the ids whose boost ended this call, sorted.
func (r *Registry) AdvanceBoosts(dt float64) []EntityID {
	var expired []EntityID
	for id, e := range r.entities {
		if e.Boost == nil {
			continue
		}
		e.Boost.RemainingSeconds -= dt
		if e.Boost.RemainingSeconds <= 0 {
			e.Boost = nil
			expired = append(expired, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// Clear removes every entity and returns how many were live.
func (r *Registry) Clear() int {
	n := len(r.entities)
	for id := range r.entities {
		delete(r.entities, id)
	}
	return n
}

// Snapshot returns copies of all live entities ordered by id.
func (r *Registry) Snapshot() []Entity {
	out := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// snapshot copies e including its boost so callers cannot mutate registry state.
func (e *Entity) snapshot() Entity {
	out := *e
	if e.Boost != nil {
		b := *e.Boost
		out.Boost = &b
	}
	return out
}
