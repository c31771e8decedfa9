package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/shape-clash/internal/config"
	"github.com/vovakirdan/shape-clash/internal/storage"
	"github.com/vovakirdan/shape-clash/internal/telemetry"
)

var (
	flagLimit int
	flagClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [stage]",
	Short: "Show run history for a stage",
	Long: `Display the top runs and a score summary for the specified stage.
Without a stage, one line per played stage is shown.

Examples:
  clash scores
  clash scores 1
  clash scores "Warm Up" --limit 5
  clash scores 2 --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of top runs to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the run history of the stage")
}

func runScores(_ *cobra.Command, args []string) {
	logger := newLogger()
	cfg := loadStages(logger)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening run history database", err)
	}
	defer store.Close()

	if len(args) == 0 {
		printAllStats(cfg, store)
		return
	}

	index, err := resolveStage(cfg, args[0])
	if err != nil {
		fail("selecting stage", err)
	}
	name := cfg.Stages[index].Name

	if flagClear {
		if err := store.ClearRuns(index); err != nil {
			fail("clearing runs", err)
		}
		fmt.Printf("Run history of stage %d cleared.\n", index+1)
		return
	}

	runs, err := store.TopRuns(index, flagLimit)
	if err != nil {
		fail("retrieving runs", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Top Runs - Stage %d: %s", index+1, name)))
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'clash play %d' to set the first score!\n", index+1)
		return
	}

	fmt.Printf("  %-4s  %-8s  %-7s  %-7s  %-20s  %s\n", "Rank", "Score", "Result", "Time", "Seed", "Date")
	fmt.Printf("  %-4s  %-8s  %-7s  %-7s  %-20s  %s\n", "----", "-----", "------", "----", "----", "----")
	for i, r := range runs {
		result := "fail"
		switch {
		case r.Win:
			result = "clear"
		case r.Aborted:
			result = "abort"
		}
		fmt.Printf("  %-4d  %-8d  %-7s  %6.1fs  %-20d  %s\n",
			i+1, r.Score, result, r.DurationSecs, r.Seed, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	all, err := store.AllRuns(index)
	if err != nil {
		fail("retrieving runs", err)
	}
	scores := make([]int, len(all))
	for i, r := range all {
		scores[i] = r.Score
	}
	sum := telemetry.Summarize(scores)

	stats, err := store.GetStageStats(index)
	if err != nil {
		fail("retrieving stats", err)
	}

	fmt.Println()
	fmt.Printf("Runs: %d  Clears: %d  Best: %d\n", sum.Count, stats.Wins, sum.Best)
	fmt.Println(dimStyle.Render(fmt.Sprintf("mean %.1f  stddev %.1f  p50 %.0f  p90 %.0f",
		sum.Mean, sum.StdDev, sum.P50, sum.P90)))
}

func printAllStats(cfg config.GameConfig, store *storage.Store) {
	all, err := store.GetAllStageStats()
	if err != nil {
		fail("retrieving stats", err)
	}

	fmt.Println(titleStyle.Render("Run History:"))
	fmt.Println()
	if len(all) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	fmt.Printf("  %-3s  %-20s  %5s  %6s  %6s  %8s  %s\n", "#", "NAME", "RUNS", "CLEARS", "BEST", "AVG", "LAST PLAYED")
	fmt.Printf("  %-3s  %-20s  %5s  %6s  %6s  %8s  %s\n", "-", "----", "----", "------", "----", "---", "-----------")
	for i, s := range cfg.Stages {
		st, ok := all[i]
		if !ok {
			continue
		}
		fmt.Printf("  %-3d  %-20s  %5d  %6d  %6d  %8.1f  %s\n",
			i+1, s.Name, st.Runs, st.Wins, st.HighScore, st.AvgScore, st.LastPlayed.Format("2006-01-02 15:04"))
	}
}
