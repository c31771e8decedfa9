package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/shape-clash/internal/config"
)

var flagWatch bool

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List all stages",
	Long:  `Display every stage in the database with its target, duration, palette and your progress.`,
	Args:  cobra.NoArgs,
	Run:   runStages,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a stage database",
	Long: `Parse and validate a stage database file. Without a file, the database
that would be loaded (--stages or the config search path) is checked.

With --watch the file is re-validated every time it is saved.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagWatch, "watch", false, "Re-validate on every change")
	stagesCmd.AddCommand(validateCmd)
}

func runStages(_ *cobra.Command, _ []string) {
	logger := newLogger()
	cfg := loadStages(logger)

	db := saveDB(logger)
	if db != nil {
		defer db.Close()
	}
	saves := openSaves(db, logger)
	rec, err := saves.LoadOrInit(cfg.Count())
	if err != nil {
		logger.Warn("save could not be loaded cleanly", "err", err)
	}

	fmt.Println(titleStyle.Render("Stages:"))
	fmt.Println()
	fmt.Printf("  %-3s %-20s %7s %6s  %-9s %-8s %s\n", "#", "NAME", "TARGET", "TIME", "PALETTE", "STATUS", "BEST")
	fmt.Printf("  %-3s %-20s %7s %6s  %-9s %-8s %s\n", "-", "----", "------", "----", "-------", "------", "----")

	for i, s := range cfg.Stages {
		best := saves.HighScore(i)
		status := "open"
		switch {
		case !saves.IsUnlocked(i):
			status = "locked"
		case best >= s.TargetScore:
			status = "cleared"
		}

		marker := " "
		if i == rec.LastStageIndex {
			marker = "*"
		}

		// Styled cells carry escape codes, so pad before rendering.
		row := fmt.Sprintf("%s %-3d %-20s %7d %5.0fs  ", marker, i+1, s.Name, s.TargetScore, s.DurationSeconds)
		palette := renderPalette(s.ColorPaletteSize) + strings.Repeat(" ", 9-s.ColorPaletteSize)
		statusCell := fmt.Sprintf("%-8s", status)
		switch status {
		case "locked":
			statusCell = lockedStyle.Render(statusCell)
		case "cleared":
			statusCell = winStyle.Render(statusCell)
		}
		fmt.Printf("%s%s %s %d\n", row, palette, statusCell, best)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("Use 'clash play <stage>' to play a stage."))
}

func runValidate(_ *cobra.Command, args []string) {
	logger := newLogger()

	path := flagStages
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		_, source, err := config.LoadWithSource("")
		if err != nil {
			fail("loading stages", err)
		}
		path = source
	}
	if path == "embedded" || path == "builtin" {
		if flagWatch {
			fail("watching stages", errors.New("the built-in stage database cannot be watched; pass a file"))
		}
		fmt.Println(winStyle.Render("OK") + " built-in stage database")
		return
	}

	ok := validateFile(path)
	if !flagWatch {
		if !ok {
			os.Exit(1)
		}
		return
	}

	w, err := config.NewWatcher(path)
	if err != nil {
		fail("watching stages", err)
	}
	defer w.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	logger.Info("watching stage database", "path", path)
	for {
		select {
		case changed, open := <-w.Events:
			if !open {
				return
			}
			validateFile(changed)
		case err, open := <-w.Errors:
			if !open {
				return
			}
			logger.Warn("watch error", "err", err)
		case <-sig:
			return
		}
	}
}

// validateFile loads path and prints the verdict.
func validateFile(path string) bool {
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Printf("%s %s: %v\n", loseStyle.Render("FAIL"), path, err)
		return false
	}
	fmt.Printf("%s %s (%d stages)\n", winStyle.Render("OK"), path, cfg.Count())
	return true
}
