package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/progress"
)

var flagJSON bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show saved progress",
	Long: `Show the saved progression record: unlocked stages, high scores and
the last selected stage.

Examples:
  clash progress
  clash progress --json
  clash progress select 2
  clash progress new
  clash progress reset`,
	Args: cobra.NoArgs,
	Run:  runProgressShow,
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved progress",
	Args:  cobra.NoArgs,
	Run:   runProgressShow,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe progress back to a never-played save",
	Args:  cobra.NoArgs,
	Run: withSaves(func(cfg config.GameConfig, saves *progress.Store, _ []string) error {
		return saves.ResetAll(cfg.Count())
	}),
}

var progressNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new game (wipes progress)",
	Args:  cobra.NoArgs,
	Run: withSaves(func(cfg config.GameConfig, saves *progress.Store, _ []string) error {
		return saves.NewGame(cfg.Count())
	}),
}

var progressSelectCmd = &cobra.Command{
	Use:   "select <stage>",
	Short: "Select the stage 'clash play' starts by default",
	Args:  cobra.ExactArgs(1),
	Run: withSaves(func(cfg config.GameConfig, saves *progress.Store, args []string) error {
		index, err := resolveStage(cfg, args[0])
		if err != nil {
			return err
		}
		if !saves.IsUnlocked(index) {
			return fmt.Errorf("stage %d is locked", index+1)
		}
		return saves.SelectStage(index)
	}),
}

func init() {
	progressCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the raw save record")
	progressShowCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the raw save record")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
	progressCmd.AddCommand(progressNewCmd)
	progressCmd.AddCommand(progressSelectCmd)
}

// withSaves loads the save, runs fn and prints the resulting record.
func withSaves(fn func(cfg config.GameConfig, saves *progress.Store, args []string) error) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		logger := newLogger()
		cfg := loadStages(logger)
		db := saveDB(logger)
		if db != nil {
			defer db.Close()
		}
		saves := openSaves(db, logger)
		if _, err := saves.LoadOrInit(cfg.Count()); err != nil {
			logger.Warn("save could not be loaded cleanly", "err", err)
		}
		if err := fn(cfg, saves, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printProgress(cfg, saves)
	}
}

func runProgressShow(_ *cobra.Command, _ []string) {
	withSaves(func(config.GameConfig, *progress.Store, []string) error { return nil })(nil, nil)
}

func printProgress(cfg config.GameConfig, saves *progress.Store) {
	rec := saves.Record()
	if flagJSON {
		data, err := progress.Marshal(rec)
		if err != nil {
			fail("encoding save", err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Println(titleStyle.Render("Progress:"))
	fmt.Println()
	fmt.Printf("Started:   %t\n", rec.HasStarted)
	fmt.Printf("Unlocked:  %d / %d\n", rec.UnlockedStageCount, cfg.Count())
	fmt.Printf("Selected:  stage %d\n", rec.LastStageIndex+1)
	fmt.Println()
	for i, s := range cfg.Stages {
		line := fmt.Sprintf("  %-3d %-20s %6d", i+1, s.Name, saves.HighScore(i))
		if !saves.IsUnlocked(i) {
			line = lockedStyle.Render(line + "  locked")
		}
		fmt.Println(line)
	}
}
