// Package physics binds the stage core to a Chipmunk2D space. It integrates
// falling shapes and projectiles and turns cp contact callbacks into plain
// events the host feeds back into the stage run.
package physics

import (
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/core"
	"github.com/vovakirdan/shape-clash/internal/stage"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeShape
	collisionTypeProjectile
)

// Config sizes the arena and the bodies in it. World units, Y up.
type Config struct {
	HalfHeight  float64 // Half of the visible height
	Aspect      float64 // Visible width / height
	SideMargin  float64 // Spawn band inset from each wall
	TopOffset   float64 // Spawn line above the top edge
	Gravity     float64 // Magnitude of downward acceleration
	ShapeSize   float64 // Box side, circle diameter and triangle base
	Friction    float64
	Elasticity  float64
	ProjectileY float64 // Launch height of projectiles
	Projectile  config.ProjectileConfig
}

// DefaultConfig matches a portrait 10 unit tall view.
func DefaultConfig() Config {
	return Config{
		HalfHeight:  5,
		Aspect:      0.66,
		SideMargin:  0.3,
		TopOffset:   0.6,
		Gravity:     9.81,
		ShapeSize:   0.6,
		Friction:    0.6,
		Elasticity:  0.1,
		ProjectileY: -4.7,
		Projectile:  config.DefaultProjectileConfig(),
	}
}

// GravityFunc returns the current gravity scale of an entity.
type GravityFunc func(id stage.EntityID) (float64, bool)

// Contact is a begin-touch between two shapes.
type Contact struct {
	A, B stage.EntityID
}

// ProjectileContact is a projectile touching a shape. NormalX points away
// from the projectile; Point approximates the contact location.
type ProjectileContact struct {
	Entity  stage.EntityID
	NormalX float64
	Point   core.Vec2
}

// StepEvents are collected during a step and delivered after it, so callers
// never mutate the space from inside a cp callback.
type StepEvents struct {
	Contacts []Contact
	Hits     []ProjectileContact
	Escaped  []stage.EntityID // Shapes that left the arena
}

type bodyInfo struct {
	body  *cp.Body
	shape *cp.Shape
}

type projectile struct {
	body     *cp.Body
	shape    *cp.Shape
	lifetime float64
	spent    bool
}

// World owns the cp space for one stage run. Not safe for concurrent use.
type World struct {
	cfg     Config
	space   *cp.Space
	gravity GravityFunc
	bounds  core.Bounds

	bodies        map[stage.EntityID]*bodyInfo
	shapeToEntity map[*cp.Shape]stage.EntityID
	projectiles   map[*cp.Shape]*projectile

	pending StepEvents
}

// NewWorld builds the space with a floor and side walls. gravity may be nil,
// in which case every shape falls at scale 1.
func NewWorld(cfg Config, gravity GravityFunc) *World {
	if cfg.HalfHeight <= 0 {
		cfg = DefaultConfig()
	}

	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{X: 0, Y: -cfg.Gravity})

	w := &World{
		cfg:           cfg,
		space:         space,
		gravity:       gravity,
		bodies:        make(map[stage.EntityID]*bodyInfo),
		shapeToEntity: make(map[*cp.Shape]stage.EntityID),
		projectiles:   make(map[*cp.Shape]*projectile),
	}
	w.bounds = core.ViewportBounds(cfg.HalfHeight, cfg.Aspect, cfg.SideMargin, cfg.TopOffset)
	w.buildWalls()
	w.setupHandlers()
	return w
}

// SetGravityFunc replaces the per-entity gravity source.
func (w *World) SetGravityFunc(fn GravityFunc) {
	w.gravity = fn
}

// SpawnArea implements stage.BoundsProvider.
func (w *World) SpawnArea() core.Bounds {
	return w.bounds
}

// SetViewport recomputes the spawn area for a new viewport. Walls stay put.
func (w *World) SetViewport(halfHeight, aspect float64) {
	w.bounds = core.ViewportBounds(halfHeight, aspect, w.cfg.SideMargin, w.cfg.TopOffset)
}

func (w *World) halfWidth() float64 {
	return w.cfg.HalfHeight * w.cfg.Aspect
}

func (w *World) buildWalls() {
	hw := w.halfWidth()
	hh := w.cfg.HalfHeight
	top := hh + w.cfg.TopOffset + w.cfg.ShapeSize*2

	thickness := 0.1
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: -hw, Y: -hh}, b: cp.Vector{X: hw, Y: -hh}},  // floor
		{a: cp.Vector{X: -hw, Y: -hh}, b: cp.Vector{X: -hw, Y: top}}, // left
		{a: cp.Vector{X: hw, Y: -hh}, b: cp.Vector{X: hw, Y: top}},   // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(w.cfg.Friction)
		shape.SetElasticity(w.cfg.Elasticity)
		shape.SetCollisionType(collisionTypeWall)
		w.space.AddShape(shape)
	}
}

func (w *World) setupHandlers() {
	shapes := w.space.NewCollisionHandler(collisionTypeShape, collisionTypeShape)
	shapes.UserData = w
	shapes.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		idA, okA := world.shapeToEntity[shapeA]
		idB, okB := world.shapeToEntity[shapeB]
		if okA && okB {
			world.pending.Contacts = append(world.pending.Contacts, Contact{A: idA, B: idB})
		}
		return true
	}

	hits := w.space.NewCollisionHandler(collisionTypeProjectile, collisionTypeShape)
	hits.UserData = w
	hits.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return false
		}
		shapeA, shapeB := arb.Shapes()
		p, projIsA := world.projectiles[shapeA]
		other := shapeB
		if !projIsA {
			p, ok = world.projectiles[shapeB]
			if !ok {
				return false
			}
			other = shapeA
		}
		// One hit per projectile.
		if p.spent {
			return false
		}
		id, ok := world.shapeToEntity[other]
		if !ok {
			return false
		}

		n := arb.Normal()
		if !projIsA {
			n = n.Neg()
		}
		pos := p.body.Position()
		p.spent = true
		world.pending.Hits = append(world.pending.Hits, ProjectileContact{
			Entity:  id,
			NormalX: n.X,
			Point:   core.Vec2{X: pos.X, Y: pos.Y},
		})
		return false
	}
}

// AddEntity creates a dynamic body for e at pos.
func (w *World) AddEntity(e stage.Entity, pos core.Vec2) {
	if _, exists := w.bodies[e.ID]; exists {
		return
	}

	size := w.cfg.ShapeSize
	mass := 1.0

	var body *cp.Body
	var shape *cp.Shape
	switch e.Kind {
	case core.KindCircle:
		radius := size / 2
		body = cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
		shape = cp.NewCircle(body, radius, cp.Vector{})
	case core.KindTriangle:
		half := size / 2
		verts := []cp.Vector{
			{X: -half, Y: -half},
			{X: half, Y: -half},
			{X: 0, Y: half},
		}
		body = cp.NewBody(mass, cp.MomentForBox(mass, size, size))
		shape = cp.NewPolyShapeRaw(body, 3, verts, 0)
	default:
		body = cp.NewBody(mass, cp.MomentForBox(mass, size, size))
		shape = cp.NewBox(body, size, size, 0)
	}

	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	id := e.ID
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		scale := w.gravityScale(id)
		cp.BodyUpdateVelocity(body, cp.Vector{X: gravity.X * scale, Y: gravity.Y * scale}, damping, dt)
	})

	shape.SetFriction(w.cfg.Friction)
	shape.SetElasticity(w.cfg.Elasticity)
	shape.SetCollisionType(collisionTypeShape)

	w.space.AddBody(body)
	w.space.AddShape(shape)

	w.bodies[id] = &bodyInfo{body: body, shape: shape}
	w.shapeToEntity[shape] = id
}

func (w *World) gravityScale(id stage.EntityID) float64 {
	if w.gravity == nil {
		return 1
	}
	if scale, ok := w.gravity(id); ok {
		return scale
	}
	return 1
}

// Remove deletes the body of id. Unknown ids are ignored.
func (w *World) Remove(id stage.EntityID) {
	info, ok := w.bodies[id]
	if !ok {
		return
	}
	w.space.RemoveShape(info.shape)
	w.space.RemoveBody(info.body)
	delete(w.shapeToEntity, info.shape)
	delete(w.bodies, id)
}

// Clear removes every shape and projectile.
func (w *World) Clear() {
	for id := range w.bodies {
		w.Remove(id)
	}
	for shape, p := range w.projectiles {
		w.removeProjectile(shape, p)
	}
}

// Count returns the number of shape bodies in the space.
func (w *World) Count() int {
	return len(w.bodies)
}

// Projectiles returns the number of live projectiles.
func (w *World) Projectiles() int {
	return len(w.projectiles)
}

// Position returns the position of an entity's body.
func (w *World) Position(id stage.EntityID) (core.Vec2, bool) {
	info, ok := w.bodies[id]
	if !ok {
		return core.Vec2{}, false
	}
	p := info.body.Position()
	return core.Vec2{X: p.X, Y: p.Y}, true
}

// Velocity returns the velocity of an entity's body.
func (w *World) Velocity(id stage.EntityID) (core.Vec2, bool) {
	info, ok := w.bodies[id]
	if !ok {
		return core.Vec2{}, false
	}
	v := info.body.Velocity()
	return core.Vec2{X: v.X, Y: v.Y}, true
}

// FireProjectile launches an upward projectile from x at the launch height.
func (w *World) FireProjectile(x float64) {
	hw := w.halfWidth()
	x = core.ClampF(x, -hw, hw)

	radius := w.cfg.ShapeSize / 4
	mass := 0.2
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: x, Y: w.cfg.ProjectileY})
	body.SetVelocity(0, w.cfg.Projectile.Speed)
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, 1, dt)
	})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeProjectile)

	w.space.AddBody(body)
	w.space.AddShape(shape)
	w.projectiles[shape] = &projectile{body: body, shape: shape, lifetime: w.cfg.Projectile.LifetimeSeconds}
}

func (w *World) removeProjectile(shape *cp.Shape, p *projectile) {
	w.space.RemoveShape(shape)
	w.space.RemoveBody(p.body)
	delete(w.projectiles, shape)
}

// ApplyNudge applies a projectile response to id and enforces the upward
// velocity floor.
func (w *World) ApplyNudge(id stage.EntityID, nudge stage.Nudge, point core.Vec2) {
	info, ok := w.bodies[id]
	if !ok {
		return
	}
	info.body.ApplyImpulseAtWorldPoint(
		cp.Vector{X: nudge.Impulse.X, Y: nudge.Impulse.Y},
		cp.Vector{X: point.X, Y: point.Y},
	)
	v := info.body.Velocity()
	if v.Y < nudge.MinUpwardVelocity {
		info.body.SetVelocity(v.X, nudge.MinUpwardVelocity)
	}
}

// Step advances the space by dt and returns what happened during the step.
// Spent and expired projectiles are removed before returning.
func (w *World) Step(dt float64) StepEvents {
	w.pending = StepEvents{}
	if dt <= 0 {
		return w.pending
	}
	w.space.Step(dt)

	ceiling := w.cfg.HalfHeight + w.cfg.TopOffset + w.cfg.ShapeSize*4
	for shape, p := range w.projectiles {
		p.lifetime -= dt
		if p.spent || p.lifetime <= 0 || p.body.Position().Y > ceiling {
			w.removeProjectile(shape, p)
		}
	}

	floor := -w.cfg.HalfHeight - w.cfg.ShapeSize*4
	hw := w.halfWidth() + w.cfg.ShapeSize*4
	for id, info := range w.bodies {
		pos := info.body.Position()
		if pos.Y < floor || pos.X < -hw || pos.X > hw {
			w.pending.Escaped = append(w.pending.Escaped, id)
		}
	}
	sort.Slice(w.pending.Escaped, func(i, j int) bool { return w.pending.Escaped[i] < w.pending.Escaped[j] })

	events := w.pending
	w.pending = StepEvents{}
	return events
}
