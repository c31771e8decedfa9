// Package headless drives a stage run without a screen. It owns the
// fixed-step host loop, wires the physics world to the stage core and feeds
// scripted input, which makes whole runs reproducible from a seed.
package headless

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/core"
	"github.com/vovakirdan/shape-clash/internal/physics"
	"github.com/vovakirdan/shape-clash/internal/stage"
	"github.com/vovakirdan/shape-clash/internal/telemetry"
)

// Options configures the host loop.
type Options struct {
	Runtime  core.RuntimeConfig
	Physics  physics.Config
	Script   Script
	Recorder *telemetry.Recorder // Optional per-tick trace
	Logger   *log.Logger

	// MaxHostSeconds force-ends the run once host time passes it, so a script
	// that never resumes cannot spin forever. Zero means four times the stage
	// duration plus a minute.
	MaxHostSeconds float64

	// Realtime paces ticks on a wall clock ticker instead of running flat out.
	Realtime bool
}

// Report summarizes a finished host loop.
type Report struct {
	Result      stage.StageResult
	Stats       stage.Stats
	Ticks       int
	HostSeconds float64
	Shots       int
	Hits        int
	Escaped     int
	TimedOut    bool
}

// Host runs one stage.
type Host struct {
	run    *stage.Run
	world  *physics.World
	opts   Options
	logger *log.Logger

	frame    core.InputFrame
	nextStep int
	autofire float64
	report   Report
}

// New builds the physics world and the stage run and wires them together.
// runOpts.Bounds is replaced by the world's spawn area.
func New(stageCfg config.StageConfig, runOpts stage.Options, opts Options) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Physics.HalfHeight <= 0 {
		opts.Physics = physics.DefaultConfig()
	}
	if runOpts.Projectile != (config.ProjectileConfig{}) {
		opts.Physics.Projectile = runOpts.Projectile
	}

	world := physics.NewWorld(opts.Physics, nil)
	runOpts.Bounds = world
	if runOpts.Logger == nil {
		runOpts.Logger = logger
	}
	if runOpts.Cues == nil {
		runOpts.Cues = LogCues(logger)
	}

	run, err := stage.NewRun(stageCfg, runOpts)
	if err != nil {
		return nil, err
	}
	world.SetGravityFunc(run.GravityScale)

	if opts.MaxHostSeconds <= 0 {
		opts.MaxHostSeconds = run.Stage().DurationSeconds*4 + 60
	}

	return &Host{
		run:    run,
		world:  world,
		opts:   opts,
		logger: logger,
		frame:  core.NewInputFrame(),
	}, nil
}

// Run returns the stage run being hosted.
func (h *Host) Run() *stage.Run { return h.run }

// World returns the physics world.
func (h *Host) World() *physics.World { return h.world }

// Loop ticks until the run ends. Cancelling ctx force-ends the run; the
// report is still returned.
func (h *Host) Loop(ctx context.Context) (Report, error) {
	dt := h.opts.Runtime.TickSeconds()

	var ticker *time.Ticker
	if h.opts.Realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer ticker.Stop()
	}

	for h.run.Phase() != stage.PhaseEnded {
		select {
		case <-ctx.Done():
			h.logger.Info("host cancelled, ending stage", "reason", ctx.Err())
			h.run.ForceEnd()
			h.world.Clear()
			return h.finish(), nil
		default:
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				continue
			case <-ticker.C:
			}
		}

		if h.report.HostSeconds >= h.opts.MaxHostSeconds {
			h.logger.Warn("host time limit reached, ending stage", "host_seconds", h.report.HostSeconds)
			h.report.TimedOut = true
			h.run.ForceEnd()
			h.world.Clear()
			break
		}

		if err := h.tick(dt); err != nil {
			return h.finish(), err
		}
	}

	return h.finish(), nil
}

// tick advances host time by dt: gather input, apply it, step physics while
// running, then advance the stage clock.
func (h *Host) tick(dt float64) error {
	h.report.Ticks++
	h.report.HostSeconds += dt

	h.gatherInput(dt)
	h.applyInput()

	var spawned bool
	if h.run.Phase() == stage.PhaseRunning {
		h.stepPhysics(dt)

		res := h.run.Tick(dt)
		if res.Spawned != nil {
			h.world.AddEntity(res.Spawned.Entity, res.Spawned.Position)
			spawned = true
		}
		if res.Ended != nil {
			h.world.Clear()
		}
	}

	stats := h.run.Stats()
	return h.opts.Recorder.Write(telemetry.Sample{
		Tick:     h.report.Ticks,
		SimTime:  h.run.Elapsed(),
		TimeLeft: h.run.TimeLeft(),
		Score:    h.run.Score(),
		Mood:     h.run.Mood().String(),
		Live:     h.run.LiveCount(),
		Phase:    h.run.Phase().String(),
		Spawned:  spawned,
		Matches:  stats.Matches,
		Stale:    stats.StaleCollisions,
	})
}

func (h *Host) gatherInput(dt float64) {
	h.frame.Clear()

	steps := h.opts.Script.Steps
	for h.nextStep < len(steps) && steps[h.nextStep].At <= h.report.HostSeconds {
		st := steps[h.nextStep]
		h.nextStep++
		a, _ := core.ParseAction(st.Do)
		if a == core.ActionFire {
			h.frame.Fire(st.X)
		} else {
			h.frame.Set(a)
		}
	}

	if every := h.opts.Script.Autofire; every > 0 && h.run.Phase() == stage.PhaseRunning {
		h.autofire += dt
		if h.autofire >= every {
			h.autofire = 0
			h.frame.Fire(h.aim())
		}
	}
}

// aim targets the lowest live shape, or the center when there is none.
func (h *Host) aim() float64 {
	x, lowest, found := 0.0, 0.0, false
	for _, e := range h.run.Entities() {
		pos, ok := h.world.Position(e.ID)
		if !ok {
			continue
		}
		if !found || pos.Y < lowest {
			x, lowest, found = pos.X, pos.Y, true
		}
	}
	return x
}

func (h *Host) applyInput() {
	if h.frame.Has(core.ActionPause) {
		h.run.Pause()
	}
	if h.frame.Has(core.ActionResume) {
		h.run.Resume()
	}
	if h.frame.Has(core.ActionTogglePause) {
		h.run.TogglePause()
	}
	if h.run.Phase() == stage.PhaseRunning {
		for _, x := range h.frame.FireX {
			h.world.FireProjectile(x)
			h.report.Shots++
		}
	}
	if h.frame.Has(core.ActionAbort) {
		if _, ok := h.run.ForceEnd(); ok {
			h.logger.Info("stage aborted by input")
			h.world.Clear()
		}
	}
}

// stepPhysics steps the world and feeds its events into the run. Bodies are
// removed only after the run confirms the removal.
func (h *Host) stepPhysics(dt float64) {
	ev := h.world.Step(dt)

	for _, c := range ev.Contacts {
		if res := h.run.ReportCollision(c.A, c.B); res.Matched {
			h.world.Remove(res.A.ID)
			h.world.Remove(res.B.ID)
		}
	}

	for _, hit := range ev.Hits {
		if nudge, ok := h.run.ProjectileHit(hit.Entity, hit.NormalX); ok {
			h.world.ApplyNudge(hit.Entity, nudge, hit.Point)
			h.report.Hits++
		}
	}

	for _, id := range ev.Escaped {
		if _, ok := h.run.Despawn(id); ok {
			h.report.Escaped++
		}
		h.world.Remove(id)
	}
}

func (h *Host) finish() Report {
	if res, ok := h.run.Result(); ok {
		h.report.Result = res
	}
	h.report.Stats = h.run.Stats()
	return h.report
}
