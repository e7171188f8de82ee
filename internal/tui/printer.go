package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mapstory/internal/trace"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Printer writes one line per trace event, for headless runs.
type Printer struct {
	w       io.Writer
	color   bool
	verbose bool
}

// NewPrinter writes to w. Layer events are only printed when verbose is set.
func NewPrinter(w io.Writer, color, verbose bool) *Printer {
	return &Printer{w: w, color: color, verbose: verbose}
}

func (p *Printer) Print(e trace.Event) {
	if !p.verbose && (e.Kind == trace.KindShow || e.Kind == trace.KindHide) {
		return
	}
	stamp := fmt.Sprintf("%8.3fs", e.At.Seconds())
	pos := fmt.Sprintf("(%d,%d)", e.Main, e.Content)
	kind := fmt.Sprintf("%-10s", e.Kind)

	var detail string
	switch e.Kind {
	case trace.KindShow, trace.KindHide:
		detail = e.Layer
	case trace.KindOverlay:
		detail = e.Detail
		if detail == "" {
			detail = "(hidden)"
		}
	default:
		detail = e.Detail
	}

	if p.color {
		stamp, pos = dim.Render(stamp), dim.Render(pos)
		kind = p.style(e.Kind).Render(kind)
	}
	fmt.Fprintln(p.w, strings.TrimRight(strings.Join([]string{stamp, pos, kind, detail}, " "), " "))
}

func (p *Printer) style(k trace.Kind) lipgloss.Style {
	switch k {
	case trace.KindStep:
		return cyan
	case trace.KindWaitStart, trace.KindWaitEnd:
		return yellow
	case trace.KindShow:
		return green
	case trace.KindAction:
		return magenta
	default:
		return white
	}
}

// Summary prints the metrics of a finished run, sorted by name.
func (p *Printer) Summary(runID string, metrics map[string]float64, names []string) {
	header := "run " + runID
	if p.color {
		header = cyan.Render(header)
	}
	fmt.Fprintln(p.w, header)
	for _, name := range names {
		fmt.Fprintf(p.w, "  %-12s %.3f\n", name, metrics[name])
	}
}
