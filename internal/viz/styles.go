package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles derives every style the player renders with from one theme.
type styles struct {
	title   lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	caption lipgloss.Style
	playing lipgloss.Style
	paused  lipgloss.Style
	waiting lipgloss.Style
	graph   lipgloss.Style
	mapView lipgloss.Style
	help    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		caption: lipgloss.NewStyle().Foreground(t.Accent).Italic(true).Width(captionWidth),
		playing: lipgloss.NewStyle().Bold(true).Foreground(t.Land),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Wait),
		waiting: lipgloss.NewStyle().Foreground(t.Wait).Blink(true),
		graph:   lipgloss.NewStyle().Foreground(t.Secondary),
		mapView: lipgloss.NewStyle().Foreground(t.Land),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
	}
}

// ProgressBar renders fraction as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Separator is a thin rule with a marker in the middle.
func Separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", width)
	}
	mid := width / 2
	return strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1)
}
