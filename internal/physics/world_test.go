package physics

import (
	"testing"

	"github.com/vovakirdan/shape-clash/internal/core"
	"github.com/vovakirdan/shape-clash/internal/stage"
)

const dt = 1.0 / 60

func entity(id stage.EntityID, kind core.Kind) stage.Entity {
	return stage.Entity{ID: id, Kind: kind, Color: core.ColorRed, BaseGravityScale: 1}
}

func stepFor(w *World, seconds float64) StepEvents {
	var all StepEvents
	for t := 0.0; t < seconds; t += dt {
		ev := w.Step(dt)
		all.Contacts = append(all.Contacts, ev.Contacts...)
		all.Hits = append(all.Hits, ev.Hits...)
		all.Escaped = append(all.Escaped, ev.Escaped...)
	}
	return all
}

func TestSpawnAreaFollowsViewport(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg, nil)

	want := core.ViewportBounds(cfg.HalfHeight, cfg.Aspect, cfg.SideMargin, cfg.TopOffset)
	if got := w.SpawnArea(); got != want {
		t.Errorf("SpawnArea() = %+v, want %+v", got, want)
	}

	w.SetViewport(5, 1)
	if got := w.SpawnArea(); got.XMax != 5-cfg.SideMargin {
		t.Errorf("XMax after SetViewport = %v", got.XMax)
	}

	var _ stage.BoundsProvider = w
}

func TestShapeFallsOntoFloor(t *testing.T) {
	w := NewWorld(DefaultConfig(), nil)
	for i, kind := range core.AllKinds {
		w.AddEntity(entity(stage.EntityID(i+1), kind), core.Vec2{X: float64(i) - 1, Y: 3})
	}

	ev := stepFor(w, 5)
	if len(ev.Escaped) != 0 {
		t.Fatalf("shapes escaped: %v", ev.Escaped)
	}
	for i := range core.AllKinds {
		pos, ok := w.Position(stage.EntityID(i + 1))
		if !ok {
			t.Fatalf("entity %d missing", i+1)
		}
		if pos.Y > -3.5 || pos.Y < -5.2 {
			t.Errorf("entity %d resting at y=%v, want near the floor", i+1, pos.Y)
		}
	}
}

func TestStackedShapesReportContact(t *testing.T) {
	w := NewWorld(DefaultConfig(), nil)
	w.AddEntity(entity(1, core.KindSquare), core.Vec2{X: 0, Y: -4.3})
	w.AddEntity(entity(2, core.KindSquare), core.Vec2{X: 0, Y: -1})

	ev := stepFor(w, 3)
	found := false
	for _, c := range ev.Contacts {
		if (c.A == 1 && c.B == 2) || (c.A == 2 && c.B == 1) {
			found = true
		}
	}
	if !found {
		t.Errorf("no contact between stacked shapes, got %v", ev.Contacts)
	}
}

func TestGravityScalePerEntity(t *testing.T) {
	scales := map[stage.EntityID]float64{1: 1, 2: 2}
	w := NewWorld(DefaultConfig(), func(id stage.EntityID) (float64, bool) {
		s, ok := scales[id]
		return s, ok
	})
	w.AddEntity(entity(1, core.KindCircle), core.Vec2{X: -1, Y: 4})
	w.AddEntity(entity(2, core.KindCircle), core.Vec2{X: 1, Y: 4})

	stepFor(w, 0.4)

	slow, _ := w.Position(1)
	fast, _ := w.Position(2)
	if fast.Y >= slow.Y {
		t.Errorf("scale 2 body at y=%v not below scale 1 body at y=%v", fast.Y, slow.Y)
	}
}

func TestProjectileHitsShapeOnce(t *testing.T) {
	// Zero gravity keeps the target hovering in the projectile's path.
	w := NewWorld(DefaultConfig(), func(stage.EntityID) (float64, bool) { return 0, true })
	w.AddEntity(entity(7, core.KindSquare), core.Vec2{X: 0, Y: 0})

	w.FireProjectile(0)
	if w.Projectiles() != 1 {
		t.Fatalf("Projectiles() = %d, want 1", w.Projectiles())
	}

	ev := stepFor(w, 1)
	if len(ev.Hits) != 1 {
		t.Fatalf("hits = %v, want exactly one", ev.Hits)
	}
	if ev.Hits[0].Entity != 7 {
		t.Errorf("hit entity %d, want 7", ev.Hits[0].Entity)
	}
	if w.Projectiles() != 0 {
		t.Errorf("spent projectile not removed")
	}
}

func TestProjectileExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Projectile.LifetimeSeconds = 0.1
	w := NewWorld(cfg, nil)

	w.FireProjectile(2)
	stepFor(w, 0.2)
	if w.Projectiles() != 0 {
		t.Errorf("Projectiles() = %d after lifetime", w.Projectiles())
	}
}

func TestApplyNudgeEnforcesUpwardFloor(t *testing.T) {
	w := NewWorld(DefaultConfig(), nil)
	w.AddEntity(entity(1, core.KindSquare), core.Vec2{X: 0, Y: 2})
	stepFor(w, 0.5)

	pos, _ := w.Position(1)
	w.ApplyNudge(1, stage.Nudge{Impulse: core.Vec2{X: 0.1, Y: 0.1}, MinUpwardVelocity: 6}, pos)

	v, _ := w.Velocity(1)
	if v.Y < 6 {
		t.Errorf("vertical velocity %v below floor 6", v.Y)
	}
}

func TestEscapedAndRemove(t *testing.T) {
	w := NewWorld(DefaultConfig(), nil)
	w.AddEntity(entity(1, core.KindSquare), core.Vec2{X: 50, Y: 0})
	w.AddEntity(entity(2, core.KindSquare), core.Vec2{X: 0, Y: 0})

	ev := w.Step(dt)
	if len(ev.Escaped) != 1 || ev.Escaped[0] != 1 {
		t.Fatalf("Escaped = %v, want [1]", ev.Escaped)
	}

	w.Remove(1)
	w.Remove(1)
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
	w.Clear()
	if w.Count() != 0 {
		t.Errorf("Count() after Clear = %d", w.Count())
	}
}
