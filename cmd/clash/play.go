package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/shape-clash/internal/core"
	"github.com/vovakirdan/shape-clash/internal/platform/headless"
	"github.com/vovakirdan/shape-clash/internal/progress"
	"github.com/vovakirdan/shape-clash/internal/stage"
	"github.com/vovakirdan/shape-clash/internal/telemetry"
)

var (
	flagScript   string
	flagAutofire float64
	flagTrace    string
	flagRealtime bool
	flagAnyStage bool
)

var playCmd = &cobra.Command{
	Use:   "play [stage]",
	Short: "Play a stage headlessly",
	Long: `Play a stage without a screen. Input comes from a YAML script and/or
autofire, which aims at the lowest shape on the field.

The stage is a 1-based number or a stage name. Without one, the last
selected stage from the save is played. Locked stages are refused unless
--any is given.

Script format:
  autofire: 0.5        # seconds between automatic shots
  steps:
    - at: 1.0          # host seconds (keeps counting while paused)
      do: fire         # fire, pause, resume, toggle or abort
      x: -0.5

Examples:
  clash play 1 --autofire 0.4
  clash play --script run.yaml --trace run.csv --seed 42
  clash play 2 --realtime`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagScript, "script", "", "Path to input script (YAML)")
	playCmd.Flags().Float64Var(&flagAutofire, "autofire", 0, "Seconds between automatic shots (overrides script)")
	playCmd.Flags().StringVar(&flagTrace, "trace", "", "Write a per-tick CSV trace to this path")
	playCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace ticks on the wall clock")
	playCmd.Flags().BoolVar(&flagAnyStage, "any", false, "Allow playing locked stages")
}

func runPlay(_ *cobra.Command, args []string) {
	logger := newLogger()
	cfg := loadStages(logger)

	db := openDB(logger)
	if db != nil {
		defer db.Close()
	}

	saves := openSaves(db, logger)
	rec, err := saves.LoadOrInit(cfg.Count())
	if err != nil {
		logger.Warn("save could not be loaded cleanly", "err", err)
	}

	index := rec.LastStageIndex
	if len(args) > 0 {
		if index, err = resolveStage(cfg, args[0]); err != nil {
			fail("selecting stage", err)
		}
	}
	if !saves.IsUnlocked(index) && !flagAnyStage {
		fmt.Fprintf(os.Stderr, "Error: stage %d is locked\n", index+1)
		fmt.Fprintln(os.Stderr, "Clear earlier stages first, or pass --any.")
		os.Exit(1)
	}
	if saves.IsUnlocked(index) {
		if err := saves.SelectStage(index); err != nil {
			logger.Warn("could not save stage selection", "err", err)
		}
	}
	if err := saves.MarkStarted(); err != nil {
		logger.Warn("could not save started flag", "err", err)
	}

	stageCfg, _ := cfg.Stage(index)

	var script headless.Script
	if flagScript != "" {
		if script, err = headless.LoadScript(flagScript); err != nil {
			fail("loading script", err)
		}
	}
	if flagAutofire > 0 {
		script.Autofire = flagAutofire
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	recorder, err := telemetry.CreateRecorder(flagTrace)
	if err != nil {
		fail("creating trace", err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warn("could not close trace", "err", err)
		}
	}()

	host, err := headless.New(stageCfg, stage.Options{
		StageIndex:  index,
		TotalStages: cfg.Count(),
		Scoring:     cfg.Scoring,
		Projectile:  cfg.Projectile,
		Audio:       cfg.Audio,
		Seed:        seed,
		Progression: saves,
		Logger:      logger.WithPrefix("stage"),
	}, headless.Options{
		Runtime:  core.RuntimeConfig{TickRate: flagFPS, Seed: seed},
		Script:   script,
		Recorder: recorder,
		Logger:   logger.WithPrefix("host"),
		Realtime: flagRealtime,
	})
	if err != nil {
		fail("creating stage", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("stage starting", "stage", index+1, "name", stageCfg.Name, "seed", seed)
	report, err := host.Loop(ctx)
	if err != nil {
		logger.Error("host loop failed", "err", err)
	}

	if db != nil {
		if _, err := db.SaveResult(report.Result, seed); err != nil {
			logger.Warn("could not save run history", "err", err)
		}
	}

	printReport(stageCfg.Name, report, host.Run().Mood(), cfg.Count(), saves)
}

func printReport(name string, report headless.Report, mood stage.Mood, total int, saves *progress.Store) {
	res := report.Result
	fmt.Println()
	fmt.Printf("%s  %s\n", titleStyle.Render(fmt.Sprintf("Stage %d: %s", res.StageIndex+1, name)), renderOutcome(res))
	fmt.Printf("Score:    %d / %d\n", res.Score, res.TargetScore)
	fmt.Printf("Time:     %.1fs\n", res.Elapsed)
	fmt.Printf("Mood:     %s\n", renderMood(mood))
	fmt.Printf("Best:     %d\n", saves.HighScore(res.StageIndex))
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"ticks %d, shots %d, hits %d, spawns %d, matches %d, escaped %d",
		report.Ticks, report.Shots, report.Hits,
		report.Stats.Spawns, report.Stats.Matches, report.Escaped)))
	if report.TimedOut {
		fmt.Println(loseStyle.Render("Host time limit reached."))
	}
	if res.SaveErr != nil {
		fmt.Println(loseStyle.Render("Progress was not saved: " + res.SaveErr.Error()))
	}
	if res.Win && progress.HasNextStage(res.StageIndex, total) {
		fmt.Printf("Stage %d unlocked.\n", res.StageIndex+2)
	}
}
