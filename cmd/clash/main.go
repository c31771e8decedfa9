// clash runs shape-clash stages headlessly and manages saved progress.
//
// Usage:
//
//	clash play [stage]         - Play a stage (default: last selected)
//	clash stages               - List stages with lock state and best scores
//	clash stages validate      - Validate a stage database file
//	clash scores <stage>       - Show run history for a stage
//	clash progress [command]   - Show or change saved progress
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set run history database (default: ~/.clash/clash.db)
//	--save-dir <path>   - Directory for the file save backend (default: ~/.clash)
//	--backend <name>    - Save backend: file or sqlite
//	--stages <path>     - Stage database file
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/progress"
	"github.com/vovakirdan/shape-clash/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagSaveDir  string
	flagBackend  string
	flagStages   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clash",
	Short: "Shape Clash - match falling shapes against the clock",
	Long: `Shape Clash drops colored shapes into a walled arena. Two touching shapes
of the same kind or the same color are matched and scored. Reach the stage
target before time runs out to unlock the next stage.

Available commands:
  play      - Play a stage headlessly (scripted or autofire input)
  stages    - List stages, or validate a stage database
  scores    - View run history for a stage
  progress  - Show, reset or edit saved progress

Examples:
  clash stages
  clash play 1 --autofire 0.5
  clash play --script run.yaml --trace run.csv
  clash scores 1
  clash progress reset`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.clash/clash.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagSaveDir, "save-dir", "~/.clash", "Directory for the file save backend")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "file", "Save backend (file or sqlite)")
	rootCmd.PersistentFlags().StringVar(&flagStages, "stages", "", "Path to stage database (default: search config dirs)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(progressCmd)
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "clash",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// fail prints err and exits.
func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}

func loadStages(logger *log.Logger) config.GameConfig {
	cfg, source, err := config.LoadWithSource(flagStages)
	if err != nil {
		fail("loading stages", err)
	}
	logger.Debug("stage database loaded", "source", source, "stages", cfg.Count())
	return cfg
}

// openSaves builds the progress store on the selected backend. db may be nil
// when the run history database could not be opened; the sqlite backend then
// falls back to files.
func openSaves(db *storage.Store, logger *log.Logger) *progress.Store {
	var backend progress.Backend
	switch strings.ToLower(flagBackend) {
	case "sqlite":
		if db != nil {
			backend = db
			break
		}
		logger.Warn("run history database unavailable, saving progress to files")
		fallthrough
	case "file":
		fb, err := progress.NewFileBackend(flagSaveDir)
		if err != nil {
			fail("opening save directory", err)
		}
		backend = fb
	default:
		fail("selecting backend", fmt.Errorf("unknown backend %q (want file or sqlite)", flagBackend))
	}
	return progress.NewStore(backend, progress.DefaultKey, logger)
}

// openDB opens the run history database, logging instead of failing so play
// still works without it.
func openDB(logger *log.Logger) *storage.Store {
	db, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open run history database", "path", flagDBPath, "err", err)
		return nil
	}
	return db
}

// resolveStage accepts a 1-based stage number or a stage name.
func resolveStage(cfg config.GameConfig, arg string) (int, error) {
	for i, s := range cfg.Stages {
		if strings.EqualFold(s.Name, arg) {
			return i, nil
		}
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("unknown stage %q", arg)
	}
	if n < 1 || n > cfg.Count() {
		return 0, fmt.Errorf("stage %d out of range (1-%d)", n, cfg.Count())
	}
	return n - 1, nil
}

// saveDB opens the database only when it backs the save.
func saveDB(logger *log.Logger) *storage.Store {
	if !strings.EqualFold(flagBackend, "sqlite") {
		return nil
	}
	return openDB(logger)
}
