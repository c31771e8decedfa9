// Package stage implements the stage simulation core: the countdown clock,
// pause state, entity lifecycle, match resolution, pacing mood and the
// end-of-stage transition. It never renders, plays audio or integrates
// physics; hosts feed it ticks and contact events and read back results.
package stage

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/core"
)

// Phase is the run state machine position.
type Phase int

const (
	PhaseRunning Phase = iota
	PhasePaused
	PhaseEnded
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Progression is the slice of the progression store a run writes at the end.
type Progression interface {
	UnlockUpTo(index, totalStages int) error
	RecordScore(index, score int) error
}

// Options carries everything a run needs besides the stage tuning.
// Zero values fall back to defaults; Progression, Cues and Logger are optional.
type Options struct {
	StageIndex  int
	TotalStages int
	Scoring     config.ScoringConfig
	Projectile  config.ProjectileConfig
	Audio       config.AudioConfig
	Seed        int64
	Bounds      BoundsProvider
	Progression Progression
	Cues        CueSink
	Logger      *log.Logger
}

// StageResult is the terminal record handed to the results flow.
type StageResult struct {
	StageIndex  int
	Score       int
	TargetScore int
	Win         bool
	Aborted     bool    // Ended by ForceEnd rather than the clock
	Elapsed     float64 // Simulated seconds played
	SaveErr     error   // Progression write failure, if any
}

// Spawned describes an entity created this tick.
type Spawned struct {
	Entity   Entity
	Position core.Vec2
}

// TickResult reports what a tick changed.
type TickResult struct {
	Spawned      *Spawned
	MoodChanged  bool
	Mood         Mood
	BoostExpired []EntityID
	Score        int
	TimeLeft     float64
	Ended        *StageResult
}

// CollisionResult reports the outcome of a contact report.
type CollisionResult struct {
	Matched bool
	Delta   int
	A, B    Entity // Removed entities when Matched
}

// Nudge is the contact response the physics layer applies to a shape hit by
// a projectile.
type Nudge struct {
	Impulse           core.Vec2 // Applied at the contact point
	MinUpwardVelocity float64   // Vertical speed floor after the impulse
	GravityScale      float64   // Boosted gravity scale now in effect
}

// Stats are diagnostic counters for one run.
type Stats struct {
	Spawns          int
	Matches         int
	Misses          int // Contacts between shapes that do not match
	StaleCollisions int // Contacts naming unknown or already removed entities
	DeferredSpawns  int
	ProjectileHits  int
}

// Run is one stage run. It is single-threaded: the host must not call into it
// concurrently.
type Run struct {
	stage       config.StageConfig
	stageIndex  int
	totalStages int
	scoring     config.ScoringConfig
	projectile  config.ProjectileConfig
	audio       config.AudioConfig

	registry *Registry
	spawner  *SpawnPolicy
	resolver MatchResolver
	mood     *MoodTracker

	progression Progression
	cues        CueSink
	logger      *log.Logger

	phase    Phase
	timeLeft float64
	elapsed  float64
	score    int
	result   *StageResult
	stats    Stats
}

// NewRun validates the stage and starts a run in the Running phase.
// Optional tuning left at zero is defaulted first; invalid tuning returns a
// *config.ConfigError and no run.
func NewRun(stageCfg config.StageConfig, opts Options) (*Run, error) {
	config.ApplyStageDefaults(&stageCfg)
	if err := config.ValidateStage(opts.StageIndex, stageCfg); err != nil {
		return nil, err
	}
	total := opts.TotalStages
	if total < 1 {
		total = 1
	}
	if opts.StageIndex < 0 || opts.StageIndex >= total {
		return nil, &config.ConfigError{
			Stage:  opts.StageIndex,
			Field:  "stage_index",
			Reason: fmt.Sprintf("out of range for %d stages", total),
		}
	}

	// A zero ScoringConfig means unset; otherwise mood_slack 0 is honored.
	scoring := opts.Scoring
	if scoring == (config.ScoringConfig{}) {
		scoring.MoodSlack = config.DefaultMoodSlack
	}
	if scoring.PointsPerMatch <= 0 {
		scoring.PointsPerMatch = config.DefaultPointsPerMatch
	}
	projectile := opts.Projectile
	if projectile == (config.ProjectileConfig{}) {
		projectile = config.DefaultProjectileConfig()
	}
	audio := opts.Audio
	if audio.PausedMusicVolume <= 0 {
		audio.PausedMusicVolume = config.DefaultPausedMusicVolume
	}

	cues := opts.Cues
	if cues == nil {
		cues = nopCues{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := &Run{
		stage:       stageCfg,
		stageIndex:  opts.StageIndex,
		totalStages: total,
		scoring:     scoring,
		projectile:  projectile,
		audio:       audio,
		registry:    NewRegistry(),
		spawner:     NewSpawnPolicy(opts.Seed, opts.Bounds),
		resolver:    NewMatchResolver(scoring.PointsPerMatch),
		mood:        NewMoodTracker(),
		progression: opts.Progression,
		cues:        cues,
		logger:      logger.With("stage", opts.StageIndex),
		phase:       PhaseRunning,
		timeLeft:    stageCfg.DurationSeconds,
	}

	r.logger.Debug("stage started",
		"name", stageCfg.Name,
		"target", stageCfg.TargetScore,
		"duration", stageCfg.DurationSeconds)
	r.cues.Cue(Cue{Kind: CueMusic, Track: stageCfg.MusicTrack, Volume: stageCfg.MusicVolume})

	return r, nil
}

// Phase returns the current phase.
func (r *Run) Phase() Phase { return r.phase }

// Score returns the current score.
func (r *Run) Score() int { return r.score }

// TimeLeft returns the remaining stage time in seconds.
func (r *Run) TimeLeft() float64 { return r.timeLeft }

// Elapsed returns simulated seconds played so far.
func (r *Run) Elapsed() float64 { return r.elapsed }

// Mood returns the last computed mood.
func (r *Run) Mood() Mood { return r.mood.Current() }

// Stage returns the stage tuning.
func (r *Run) Stage() config.StageConfig { return r.stage }

// StageIndex returns the index of the stage being played.
func (r *Run) StageIndex() int { return r.stageIndex }

// LiveCount returns the number of live entities.
func (r *Run) LiveCount() int { return r.registry.Len() }

// Entity returns a live entity by id.
func (r *Run) Entity(id EntityID) (Entity, bool) { return r.registry.Get(id) }

// Entities returns copies of the live entities ordered by id.
func (r *Run) Entities() []Entity { return r.registry.Snapshot() }

// Result returns the terminal result once the run has ended.
func (r *Run) Result() (StageResult, bool) {
	if r.result == nil {
		return StageResult{}, false
	}
	return *r.result, true
}

// Stats returns diagnostic counters.
func (r *Run) Stats() Stats {
	s := r.stats
	s.DeferredSpawns = r.spawner.Deferred()
	return s
}

// GravityScale returns the current fall-speed multiplier of a live entity.
func (r *Run) GravityScale(id EntityID) (float64, bool) {
	e, ok := r.registry.Get(id)
	if !ok {
		return 0, false
	}
	return e.GravityScale(), true
}

// Pause freezes the run. Returns false if the run was not running.
func (r *Run) Pause() bool {
	if r.phase != PhaseRunning {
		return false
	}
	r.phase = PhasePaused
	r.logger.Debug("paused", "time_left", r.timeLeft)
	r.cues.Cue(Cue{Kind: CuePause, Volume: r.audio.PausedMusicVolume})
	return true
}

// Resume unfreezes a paused run. Returns false if the run was not paused.
func (r *Run) Resume() bool {
	if r.phase != PhasePaused {
		return false
	}
	r.phase = PhaseRunning
	r.logger.Debug("resumed", "time_left", r.timeLeft)
	r.cues.Cue(Cue{Kind: CueResume, Volume: r.stage.MusicVolume})
	return true
}

// TogglePause pauses a running run or resumes a paused one.
func (r *Run) TogglePause() bool {
	switch r.phase {
	case PhaseRunning:
		return r.Pause()
	case PhasePaused:
		return r.Resume()
	default:
		return false
	}
}

// Tick advances the run by delta seconds. It does nothing unless running.
func (r *Run) Tick(delta float64) TickResult {
	if r.phase != PhaseRunning {
		return r.snapshotTick()
	}
	if delta < 0 {
		delta = 0
	}

	r.elapsed += delta
	r.timeLeft -= delta
	if r.timeLeft <= 0 {
		r.timeLeft = 0
		res := r.snapshotTick()
		result := r.end(false)
		res.Ended = &result
		return res
	}

	res := TickResult{}
	res.BoostExpired = r.registry.AdvanceBoosts(delta)

	if mood, changed := r.mood.Update(r.score, r.timeLeft, r.stage.DurationSeconds, r.stage.TargetScore, r.scoring.MoodSlack); changed {
		res.MoodChanged = true
		r.logger.Debug("mood changed", "mood", mood, "score", r.score, "time_left", r.timeLeft)
	}
	res.Mood = r.mood.Current()

	if req, ok := r.spawner.Decide(delta, r.stage, r.registry.Len()); ok {
		e := r.registry.Spawn(req.Kind, req.Color, r.stage.BaseFallSpeedScale)
		r.stats.Spawns++
		res.Spawned = &Spawned{Entity: e, Position: req.Position}
	}

	res.Score = r.score
	res.TimeLeft = r.timeLeft
	return res
}

// ReportCollision handles a contact between two entities. Duplicate or late
// reports for an entity that is already gone are ignored.
func (r *Run) ReportCollision(a, b EntityID) CollisionResult {
	if r.phase != PhaseRunning {
		return CollisionResult{}
	}

	ea, okA := r.registry.Get(a)
	eb, okB := r.registry.Get(b)
	if a == b || !okA || !okB {
		r.stats.StaleCollisions++
		r.logger.Debug("stale collision ignored", "a", a, "b", b)
		return CollisionResult{}
	}

	delta, ok := r.resolver.Resolve(ea, eb)
	if !ok {
		r.stats.Misses++
		return CollisionResult{}
	}

	takenA, takenB, ok := r.registry.TakePair(a, b)
	if !ok {
		r.stats.StaleCollisions++
		return CollisionResult{}
	}

	r.score += delta
	r.stats.Matches++
	r.cues.Cue(Cue{Kind: CueClash, Volume: clashVolume})

	return CollisionResult{Matched: true, Delta: delta, A: takenA, B: takenB}
}

// Despawn confirms external removal of an entity, for example one that left
// the play area. Returns false if it was already gone.
func (r *Run) Despawn(id EntityID) (Entity, bool) {
	if r.phase == PhaseEnded {
		return Entity{}, false
	}
	return r.registry.Take(id)
}

// ProjectileHit applies a projectile contact to entity id. normalX is the
// horizontal component of the contact normal pointing away from the projectile.
// A live boost is refreshed rather than stacked.
func (r *Run) ProjectileHit(id EntityID, normalX float64) (Nudge, bool) {
	if r.phase != PhaseRunning {
		return Nudge{}, false
	}
	if !r.registry.SetBoost(id, r.projectile.ExtraGravity, r.projectile.ExtraGravitySeconds) {
		r.stats.StaleCollisions++
		return Nudge{}, false
	}
	r.stats.ProjectileHits++

	scale, _ := r.GravityScale(id)
	return Nudge{
		Impulse: core.Vec2{
			X: core.Sign(normalX) * r.projectile.LateralImpulse,
			Y: r.projectile.UpwardImpulse,
		},
		MinUpwardVelocity: r.projectile.MinUpwardVelocity,
		GravityScale:      scale,
	}, true
}

// ForceEnd ends the run early. The returned result is the same one later
// calls to Result report; ok is false if the run had already ended.
func (r *Run) ForceEnd() (StageResult, bool) {
	if r.phase == PhaseEnded {
		return *r.result, false
	}
	return r.end(true), true
}

// end performs the one-shot transition to Ended.
func (r *Run) end(aborted bool) StageResult {
	r.phase = PhaseEnded
	target := r.stage.TargetScore
	win := r.score >= target

	result := StageResult{
		StageIndex:  r.stageIndex,
		Score:       r.score,
		TargetScore: target,
		Win:         win,
		Aborted:     aborted,
		Elapsed:     r.elapsed,
	}

	if r.progression != nil {
		var errs []error
		if win {
			next := core.Min(r.stageIndex+1, r.totalStages-1)
			if err := r.progression.UnlockUpTo(next, r.totalStages); err != nil {
				errs = append(errs, fmt.Errorf("unlock stage %d: %w", next, err))
			}
		}
		if err := r.progression.RecordScore(r.stageIndex, r.score); err != nil {
			errs = append(errs, fmt.Errorf("record score: %w", err))
		}
		result.SaveErr = errors.Join(errs...)
		if result.SaveErr != nil {
			r.logger.Warn("could not save progression", "error", result.SaveErr)
		}
	}

	cleared := r.registry.Clear()
	r.result = &result

	if win {
		r.cues.Cue(Cue{Kind: CueWin, Volume: jingleVolume})
	} else {
		r.cues.Cue(Cue{Kind: CueLose, Volume: jingleVolume})
	}

	r.logger.Info("stage ended",
		"score", r.score,
		"target", target,
		"win", win,
		"aborted", aborted,
		"cleared", cleared,
		"stale", r.stats.StaleCollisions)

	return result
}

func (r *Run) snapshotTick() TickResult {
	return TickResult{
		Mood:     r.mood.Current(),
		Score:    r.score,
		TimeLeft: r.timeLeft,
	}
}
