package stage

import (
	"errors"
	"testing"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/core"
)

type unlockCall struct{ index, total int }

type fakeProgression struct {
	unlocks  []unlockCall
	scores   map[int]int
	failWith error
}

func (f *fakeProgression) UnlockUpTo(index, total int) error {
	f.unlocks = append(f.unlocks, unlockCall{index, total})
	return f.failWith
}

func (f *fakeProgression) RecordScore(index, score int) error {
	if f.scores == nil {
		f.scores = make(map[int]int)
	}
	if cur, ok := f.scores[index]; !ok || score > cur {
		f.scores[index] = score
	}
	return f.failWith
}

// testStage spawns a square every 0.25s so every pair matches.
func testStage() config.StageConfig {
	return config.StageConfig{
		Name:                  "test",
		TargetScore:           20,
		DurationSeconds:       2,
		SpawnIntervalSeconds:  0.25,
		BaseFallSpeedScale:    1,
		MaxConcurrentEntities: 10,
		ColorPaletteSize:      3,
		AllowedKinds:          []core.Kind{core.KindSquare},
		MusicVolume:           0.8,
	}
}

func newTestRun(t *testing.T, stage config.StageConfig, opts Options) *Run {
	t.Helper()
	if opts.TotalStages == 0 {
		opts.TotalStages = 3
	}
	r, err := NewRun(stage, opts)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return r
}

// spawnN ticks until n entities have been spawned and returns their ids.
func spawnN(t *testing.T, r *Run, n int) []EntityID {
	t.Helper()
	var ids []EntityID
	for len(ids) < n {
		res := r.Tick(0.25)
		if res.Ended != nil {
			t.Fatalf("run ended while spawning")
		}
		if res.Spawned != nil {
			ids = append(ids, res.Spawned.Entity.ID)
		}
	}
	return ids
}

func TestNewRunRejectsInvalidTuning(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(*config.StageConfig)
	}{
		{"zero target", "target_score", func(s *config.StageConfig) { s.TargetScore = 0 }},
		{"negative duration", "duration_seconds", func(s *config.StageConfig) { s.DurationSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStage()
			tt.edit(&s)
			_, err := NewRun(s, Options{TotalStages: 1})
			var ce *config.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("NewRun() error = %v, want ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}

	if _, err := NewRun(testStage(), Options{StageIndex: 5, TotalStages: 2}); !config.IsConfigError(err) {
		t.Errorf("out of range stage index: error = %v", err)
	}
}

func TestNewRunDefaultsOptionalTuning(t *testing.T) {
	s := testStage()
	s.SpawnIntervalSeconds = 0
	s.MaxConcurrentEntities = 0
	r := newTestRun(t, s, Options{})
	if got := r.Stage().SpawnIntervalSeconds; got != config.DefaultSpawnInterval {
		t.Errorf("SpawnIntervalSeconds = %v, want default", got)
	}
	if got := r.Stage().MaxConcurrentEntities; got != config.DefaultMaxConcurrent {
		t.Errorf("MaxConcurrentEntities = %v, want default", got)
	}
}

func TestRunEndsExactlyAtDuration(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})

	// 2s at 0.25s per tick: the eighth tick ends the run.
	for i := 1; i <= 7; i++ {
		if res := r.Tick(0.25); res.Ended != nil {
			t.Fatalf("ended early on tick %d", i)
		}
		if r.Phase() != PhaseRunning {
			t.Fatalf("phase = %v on tick %d", r.Phase(), i)
		}
	}

	res := r.Tick(0.25)
	if res.Ended == nil {
		t.Fatal("run did not end at duration")
	}
	if r.Phase() != PhaseEnded || r.TimeLeft() != 0 {
		t.Errorf("phase = %v, timeLeft = %v", r.Phase(), r.TimeLeft())
	}
	if r.LiveCount() != 0 {
		t.Errorf("LiveCount() = %d after end, want 0", r.LiveCount())
	}
}

func TestRunOvershootClampsTimeLeft(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	res := r.Tick(10)
	if res.Ended == nil || r.TimeLeft() != 0 {
		t.Fatalf("Tick(10) ended = %v, timeLeft = %v", res.Ended != nil, r.TimeLeft())
	}
	if res.Ended.Elapsed != 10 {
		t.Errorf("Elapsed = %v, want 10", res.Ended.Elapsed)
	}
}

func TestDuplicateCollisionScoresOnce(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	ids := spawnN(t, r, 2)

	first := r.ReportCollision(ids[0], ids[1])
	if !first.Matched || first.Delta != config.DefaultPointsPerMatch {
		t.Fatalf("first report = %+v", first)
	}
	second := r.ReportCollision(ids[0], ids[1])
	if second.Matched {
		t.Error("duplicate report matched again")
	}
	reversed := r.ReportCollision(ids[1], ids[0])
	if reversed.Matched {
		t.Error("reversed duplicate matched again")
	}

	if r.Score() != config.DefaultPointsPerMatch {
		t.Errorf("Score() = %d, want %d", r.Score(), config.DefaultPointsPerMatch)
	}
	if got := r.Stats().StaleCollisions; got != 2 {
		t.Errorf("StaleCollisions = %d, want 2", got)
	}
}

func TestSameColorDifferentKindMatches(t *testing.T) {
	s := testStage()
	s.AllowedKinds = []core.Kind{core.KindSquare, core.KindCircle}
	r := newTestRun(t, s, Options{})

	a := r.registry.Spawn(core.KindSquare, core.ColorIndigo, 1)
	b := r.registry.Spawn(core.KindCircle, core.ColorIndigo, 1)

	res := r.ReportCollision(a.ID, b.ID)
	if !res.Matched {
		t.Fatal("same color did not match")
	}
	if r.Score() != config.DefaultPointsPerMatch {
		t.Errorf("Score() = %d", r.Score())
	}
	if _, ok := r.Entity(a.ID); ok {
		t.Error("a still live")
	}
	if _, ok := r.Entity(b.ID); ok {
		t.Error("b still live")
	}
	if !res.A.MarkedForRemoval || !res.B.MarkedForRemoval {
		t.Error("removed entities should be marked")
	}
}

func TestNonMatchingCollisionKeepsEntities(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	a := r.registry.Spawn(core.KindSquare, core.ColorRed, 1)
	b := r.registry.Spawn(core.KindTriangle, core.ColorBlue, 1)

	if res := r.ReportCollision(a.ID, b.ID); res.Matched {
		t.Fatal("different kind and color matched")
	}
	if r.LiveCount() != 2 || r.Score() != 0 {
		t.Errorf("LiveCount = %d, Score = %d", r.LiveCount(), r.Score())
	}
	if r.Stats().Misses != 1 {
		t.Errorf("Misses = %d, want 1", r.Stats().Misses)
	}
}

func TestSelfCollisionIsStale(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	ids := spawnN(t, r, 1)
	if res := r.ReportCollision(ids[0], ids[0]); res.Matched {
		t.Fatal("entity matched itself")
	}
	if r.LiveCount() != 1 {
		t.Errorf("LiveCount() = %d, want 1", r.LiveCount())
	}
}

func TestWinUnlocksNextStage(t *testing.T) {
	prog := &fakeProgression{}
	r := newTestRun(t, testStage(), Options{StageIndex: 0, TotalStages: 3, Progression: prog})

	ids := spawnN(t, r, 4)
	r.ReportCollision(ids[0], ids[1])
	r.ReportCollision(ids[2], ids[3])
	if r.Score() != 20 {
		t.Fatalf("Score() = %d, want 20", r.Score())
	}

	var result *StageResult
	for result == nil {
		result = r.Tick(0.25).Ended
	}
	if !result.Win || result.Score != 20 || result.TargetScore != 20 || result.StageIndex != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(prog.unlocks) != 1 || prog.unlocks[0] != (unlockCall{1, 3}) {
		t.Errorf("unlocks = %v, want [{1 3}]", prog.unlocks)
	}
	if prog.scores[0] != 20 {
		t.Errorf("recorded score = %d, want 20", prog.scores[0])
	}
}

func TestWinOnLastStageCapsUnlock(t *testing.T) {
	prog := &fakeProgression{}
	r := newTestRun(t, testStage(), Options{StageIndex: 2, TotalStages: 3, Progression: prog})
	ids := spawnN(t, r, 4)
	r.ReportCollision(ids[0], ids[1])
	r.ReportCollision(ids[2], ids[3])
	r.Tick(10)

	if len(prog.unlocks) != 1 || prog.unlocks[0] != (unlockCall{2, 3}) {
		t.Errorf("unlocks = %v, want [{2 3}]", prog.unlocks)
	}
}

func TestLossRecordsScoreWithoutUnlock(t *testing.T) {
	prog := &fakeProgression{}
	r := newTestRun(t, testStage(), Options{Progression: prog})
	ids := spawnN(t, r, 2)
	r.ReportCollision(ids[0], ids[1])

	res := r.Tick(10)
	if res.Ended == nil || res.Ended.Win {
		t.Fatalf("result = %+v, want loss", res.Ended)
	}
	if len(prog.unlocks) != 0 {
		t.Errorf("loss unlocked stages: %v", prog.unlocks)
	}
	if prog.scores[0] != 10 {
		t.Errorf("recorded score = %d, want 10", prog.scores[0])
	}
}

func TestSaveErrorIsReportedNotFatal(t *testing.T) {
	prog := &fakeProgression{failWith: errors.New("disk full")}
	r := newTestRun(t, testStage(), Options{Progression: prog})
	res := r.Tick(10)
	if res.Ended == nil {
		t.Fatal("run did not end")
	}
	if res.Ended.SaveErr == nil {
		t.Error("SaveErr not reported")
	}
	if r.Phase() != PhaseEnded {
		t.Errorf("phase = %v", r.Phase())
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	var cues []CueKind
	sink := CueFunc(func(c Cue) { cues = append(cues, c.Kind) })
	r := newTestRun(t, testStage(), Options{Cues: sink})

	if !r.Pause() {
		t.Fatal("first Pause() returned false")
	}
	if r.Pause() {
		t.Error("second Pause() returned true")
	}

	before := r.TimeLeft()
	res := r.Tick(1)
	if r.TimeLeft() != before || res.Spawned != nil {
		t.Error("Tick advanced while paused")
	}

	if !r.Resume() {
		t.Fatal("Resume() returned false")
	}
	if r.Resume() {
		t.Error("second Resume() returned true")
	}

	want := []CueKind{CueMusic, CuePause, CueResume}
	if len(cues) != len(want) {
		t.Fatalf("cues = %v, want %v", cues, want)
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cues[%d] = %v, want %v", i, cues[i], want[i])
		}
	}
}

func TestCollisionIgnoredWhilePaused(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	ids := spawnN(t, r, 2)
	r.Pause()
	if res := r.ReportCollision(ids[0], ids[1]); res.Matched {
		t.Error("collision matched while paused")
	}
	r.Resume()
	if res := r.ReportCollision(ids[0], ids[1]); !res.Matched {
		t.Error("collision did not match after resume")
	}
}

func TestEndedRunIsInert(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	a := r.registry.Spawn(core.KindSquare, core.ColorRed, 1)
	b := r.registry.Spawn(core.KindSquare, core.ColorRed, 1)
	r.Tick(10)

	if res := r.Tick(1); res.Ended != nil || res.Spawned != nil {
		t.Error("Tick after end produced output")
	}
	if res := r.ReportCollision(a.ID, b.ID); res.Matched {
		t.Error("collision after end matched")
	}
	if r.Pause() || r.Resume() || r.TogglePause() {
		t.Error("pause controls acted after end")
	}
	if _, ok := r.ForceEnd(); ok {
		t.Error("ForceEnd after end reported ok")
	}
	if r.Score() != 0 {
		t.Errorf("Score() = %d", r.Score())
	}
}

func TestForceEnd(t *testing.T) {
	prog := &fakeProgression{}
	r := newTestRun(t, testStage(), Options{Progression: prog})
	r.Tick(0.5)

	res, ok := r.ForceEnd()
	if !ok {
		t.Fatal("ForceEnd() returned false")
	}
	if !res.Aborted || res.Win || res.Elapsed != 0.5 {
		t.Errorf("result = %+v", res)
	}
	got, ok := r.Result()
	if !ok || got != res {
		t.Errorf("Result() = %+v,%v", got, ok)
	}
	if score, recorded := prog.scores[0]; !recorded || score != 0 {
		t.Errorf("forced end recorded %d,%v, want 0,true", score, recorded)
	}
}

func TestProjectileHitBoostsAndExpires(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	ids := spawnN(t, r, 1)
	proj := config.DefaultProjectileConfig()

	nudge, ok := r.ProjectileHit(ids[0], -0.3)
	if !ok {
		t.Fatal("ProjectileHit() failed")
	}
	if nudge.Impulse.X != -proj.LateralImpulse || nudge.Impulse.Y != proj.UpwardImpulse {
		t.Errorf("Impulse = %+v", nudge.Impulse)
	}
	if nudge.MinUpwardVelocity != proj.MinUpwardVelocity {
		t.Errorf("MinUpwardVelocity = %v", nudge.MinUpwardVelocity)
	}
	if nudge.GravityScale != 1+proj.ExtraGravity {
		t.Errorf("GravityScale = %v", nudge.GravityScale)
	}

	// Boost lasts 0.45s: still on after 0.25, gone after 0.5.
	r.Tick(0.25)
	if scale, _ := r.GravityScale(ids[0]); scale != 1+proj.ExtraGravity {
		t.Errorf("boost expired early, scale = %v", scale)
	}
	res := r.Tick(0.25)
	if len(res.BoostExpired) != 1 || res.BoostExpired[0] != ids[0] {
		t.Errorf("BoostExpired = %v", res.BoostExpired)
	}
	if scale, _ := r.GravityScale(ids[0]); scale != 1 {
		t.Errorf("scale after expiry = %v, want 1", scale)
	}

	if _, ok := r.ProjectileHit(999, 1); ok {
		t.Error("ProjectileHit on unknown id succeeded")
	}
}

func TestDespawn(t *testing.T) {
	r := newTestRun(t, testStage(), Options{})
	ids := spawnN(t, r, 2)
	if _, ok := r.Despawn(ids[0]); !ok {
		t.Fatal("Despawn() failed")
	}
	if _, ok := r.Despawn(ids[0]); ok {
		t.Error("second Despawn() succeeded")
	}
	if res := r.ReportCollision(ids[0], ids[1]); res.Matched {
		t.Error("despawned entity matched")
	}
}

func TestMoodChangeSurfacedOnce(t *testing.T) {
	s := testStage()
	s.SpawnIntervalSeconds = 100
	r := newTestRun(t, s, Options{})

	// No score by mid-stage drives the mood to crying once.
	changes := 0
	for i := 0; i < 7; i++ {
		if r.Tick(0.25).MoodChanged {
			changes++
		}
	}
	if changes != 1 || r.Mood() != MoodCrying {
		t.Errorf("changes = %d, mood = %v", changes, r.Mood())
	}
}

func TestEndCuesByOutcome(t *testing.T) {
	var last Cue
	r := newTestRun(t, testStage(), Options{Cues: CueFunc(func(c Cue) { last = c })})
	r.Tick(10)
	if last.Kind != CueLose || last.Volume != jingleVolume {
		t.Errorf("last cue = %+v, want lose", last)
	}
}

func TestZeroMoodSlackIsHonored(t *testing.T) {
	strict := newTestRun(t, testStage(), Options{Scoring: config.ScoringConfig{PointsPerMatch: 10, MoodSlack: 0}})
	strict.Tick(0.1)
	if strict.Mood() != MoodCrying {
		t.Errorf("slack 0: Mood() = %v, want crying", strict.Mood())
	}

	defaulted := newTestRun(t, testStage(), Options{})
	defaulted.Tick(0.1)
	if defaulted.Mood() != MoodInnocent {
		t.Errorf("unset scoring: Mood() = %v, want innocent", defaulted.Mood())
	}
}

func TestNewRunKeepsSilentMusicAndRejectsBadPalette(t *testing.T) {
	silent := testStage()
	silent.MusicVolume = 0
	var music Cue
	newTestRun(t, silent, Options{Cues: CueFunc(func(c Cue) {
		if c.Kind == CueMusic {
			music = c
		}
	})})
	if music.Kind != CueMusic || music.Volume != 0 {
		t.Errorf("music cue = %+v, want volume 0", music)
	}

	wide := testStage()
	wide.ColorPaletteSize = 12
	if _, err := NewRun(wide, Options{TotalStages: 1}); !config.IsConfigError(err) {
		t.Errorf("NewRun(palette 12) error = %v, want ConfigError", err)
	}
}
