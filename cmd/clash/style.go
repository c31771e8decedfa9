package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/shape-clash/internal/core"
	"github.com/vovakirdan/shape-clash/internal/stage"
)

// colorStyles maps shape colors to terminal colors.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorOrange: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorIndigo: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	core.ColorViolet: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	loseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var moodStyles = map[stage.Mood]lipgloss.Style{
	stage.MoodInnocent: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	stage.MoodHappy:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	stage.MoodCrying:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
}

// renderPalette draws one block per color in the first n palette entries.
func renderPalette(n int) string {
	var b strings.Builder
	for i := 0; i < n && i < core.ColorCount; i++ {
		b.WriteString(colorStyles[core.Color(i)].Render("■"))
	}
	return b.String()
}

func renderMood(m stage.Mood) string {
	return moodStyles[m].Render(m.String())
}

func renderOutcome(res stage.StageResult) string {
	switch {
	case res.Win:
		return winStyle.Render("CLEAR")
	case res.Aborted:
		return loseStyle.Render("ABORTED")
	default:
		return loseStyle.Render("FAILED")
	}
}
