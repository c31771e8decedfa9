package stage

import (
	"testing"

	"github.com/vovakirdan/shape-clash/internal/core"
)

func TestRegistrySpawnAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()
	seen := make(map[EntityID]bool)
	for i := 0; i < 10; i++ {
		e := r.Spawn(core.KindSquare, core.ColorRed, 1)
		if e.ID == 0 {
			t.Fatal("spawned entity got id 0")
		}
		if seen[e.ID] {
			t.Fatalf("id %d assigned twice", e.ID)
		}
		seen[e.ID] = true
	}
	if r.Len() != 10 {
		t.Errorf("Len() = %d, want 10", r.Len())
	}
}

func TestRegistryTakeIsOneShot(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn(core.KindCircle, core.ColorBlue, 1)

	got, ok := r.Take(e.ID)
	if !ok {
		t.Fatal("first Take() failed")
	}
	if !got.MarkedForRemoval {
		t.Error("taken entity should be marked for removal")
	}
	if _, ok := r.Take(e.ID); ok {
		t.Error("second Take() should report absence")
	}
	if r.Contains(e.ID) {
		t.Error("entity still live after Take()")
	}
}

func TestRegistryTakePairAllOrNothing(t *testing.T) {
	r := NewRegistry()
	a := r.Spawn(core.KindSquare, core.ColorRed, 1)
	b := r.Spawn(core.KindSquare, core.ColorGreen, 1)

	if _, _, ok := r.TakePair(a.ID, a.ID); ok {
		t.Error("TakePair with the same id should fail")
	}
	if _, _, ok := r.TakePair(a.ID, 999); ok {
		t.Error("TakePair with a missing id should fail")
	}
	if !r.Contains(a.ID) {
		t.Fatal("failed TakePair removed an entity")
	}

	ea, eb, ok := r.TakePair(a.ID, b.ID)
	if !ok {
		t.Fatal("TakePair() failed")
	}
	if ea.ID != a.ID || eb.ID != b.ID {
		t.Errorf("TakePair returned %d,%d want %d,%d", ea.ID, eb.ID, a.ID, b.ID)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistryBoostCountdown(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn(core.KindTriangle, core.ColorYellow, 0.5)

	if !r.SetBoost(e.ID, 1, 0.5) {
		t.Fatal("SetBoost() failed")
	}
	got, _ := r.Get(e.ID)
	if got.GravityScale() != 1.5 {
		t.Errorf("boosted GravityScale() = %v, want 1.5", got.GravityScale())
	}

	if expired := r.AdvanceBoosts(0.25); len(expired) != 0 {
		t.Errorf("boost expired early: %v", expired)
	}
	expired := r.AdvanceBoosts(0.25)
	if len(expired) != 1 || expired[0] != e.ID {
		t.Fatalf("AdvanceBoosts() = %v, want [%d]", expired, e.ID)
	}
	got, _ = r.Get(e.ID)
	if got.Boosted() || got.GravityScale() != 0.5 {
		t.Errorf("boost not cleared: %+v", got)
	}
}

func TestRegistrySetBoostRefreshes(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn(core.KindTriangle, core.ColorYellow, 1)

	r.SetBoost(e.ID, 1, 0.5)
	r.AdvanceBoosts(0.25)
	r.SetBoost(e.ID, 1, 0.5)

	got, _ := r.Get(e.ID)
	if got.Boost.RemainingSeconds != 0.5 {
		t.Errorf("RemainingSeconds = %v, want 0.5", got.Boost.RemainingSeconds)
	}
	if got.GravityScale() != 2 {
		t.Errorf("GravityScale() = %v, boosts should not stack", got.GravityScale())
	}
	if r.SetBoost(42, 1, 1) {
		t.Error("SetBoost on missing id should fail")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn(core.KindSquare, core.ColorRed, 1)
	r.SetBoost(e.ID, 1, 1)

	got, _ := r.Get(e.ID)
	got.Boost.RemainingSeconds = 100

	again, _ := r.Get(e.ID)
	if again.Boost.RemainingSeconds != 1 {
		t.Error("mutating a copy changed registry state")
	}
}

func TestRegistryClearAndSnapshot(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Spawn(core.KindCircle, core.ColorViolet, 1)
	}

	snap := r.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i-1].ID >= snap[i].ID {
			t.Fatalf("Snapshot() not sorted: %v", snap)
		}
	}

	if n := r.Clear(); n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d", r.Len())
	}

	next := r.Spawn(core.KindCircle, core.ColorViolet, 1)
	if next.ID <= snap[len(snap)-1].ID {
		t.Errorf("id %d reused after Clear", next.ID)
	}
}
