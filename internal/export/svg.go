package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/san-kum/mapstory/internal/trace"
)

const (
	rowHeight   = 18
	labelWidth  = 180
	axisHeight  = 24
	progressRow = 60
)

// GanttToSVG draws one row per layer showing when it was signalled visible,
// shaded bands for scene waits, and ticks for timeline steps. A progress
// curve runs along the bottom when samples are given.
func GanttToSVG(events []trace.Event, samples []trace.Sample, width int) string {
	end := trace.End(events, samples)
	if end <= 0 {
		end = time.Second
	}
	spans := trace.Spans(events, end)

	rows := make(map[string]int)
	order := make([]string, 0)
	for _, s := range spans {
		if _, ok := rows[s.Layer]; !ok {
			rows[s.Layer] = len(order)
			order = append(order, s.Layer)
		}
	}

	plotW := float64(width - labelWidth)
	if plotW < 100 {
		plotW = 100
		width = labelWidth + 100
	}
	x := func(t time.Duration) float64 {
		return labelWidth + float64(t)/float64(end)*plotW
	}

	chartH := len(order)*rowHeight + axisHeight
	height := chartH
	if len(samples) > 1 {
		height += progressRow
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="11">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// waits
	sb.WriteString(`<g fill="#30363d" fill-opacity="0.6">` + "\n")
	var waitFrom time.Duration
	waiting := false
	for _, e := range events {
		switch e.Kind {
		case trace.KindWaitStart:
			waitFrom, waiting = e.At, true
		case trace.KindWaitEnd:
			if waiting {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%d"/>`+"\n",
					x(waitFrom), x(e.At)-x(waitFrom), chartH-axisHeight))
				waiting = false
			}
		}
	}
	sb.WriteString("</g>\n")

	// layers
	for i, layer := range order {
		y := i*rowHeight + rowHeight - 5
		sb.WriteString(fmt.Sprintf(`<text x="4" y="%d" fill="#c9d1d9">%s</text>`+"\n", y, html.EscapeString(layer)))
	}
	sb.WriteString(`<g fill="#58a6ff">` + "\n")
	for _, s := range spans {
		y := rows[s.Layer]*rowHeight + 3
		w := x(s.To) - x(s.From)
		if w < 1 {
			w = 1
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%d" width="%.1f" height="%d" rx="2"/>`+"\n",
			x(s.From), y, w, rowHeight-6))
	}
	sb.WriteString("</g>\n")

	// steps
	sb.WriteString(`<g stroke="#f0883e" stroke-width="1">` + "\n")
	for _, e := range events {
		if e.Kind != trace.KindStep {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d"/>`+"\n", x(e.At), x(e.At), chartH-axisHeight))
	}
	sb.WriteString("</g>\n")

	// axis
	axisY := chartH - axisHeight + 14
	for _, t := range ticks(end) {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" fill="#8b949e">%gs</text>`+"\n", x(t), axisY, t.Seconds()))
	}

	if len(samples) > 1 {
		sb.WriteString(progressPath(samples, x, chartH, progressRow))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func progressPath(samples []trace.Sample, x func(time.Duration) float64, top, h int) string {
	var sb strings.Builder
	sb.WriteString(`<path fill="none" stroke="#3fb950" stroke-width="1.5" d="M`)
	for i, s := range samples {
		y := float64(top+h-4) - s.Progress*float64(h-8)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x(s.At), y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x(s.At), y))
		}
	}
	sb.WriteString(`"/>` + "\n")
	return sb.String()
}

// ticks picks round axis labels, at most ten of them.
func ticks(end time.Duration) []time.Duration {
	step := time.Second
	for _, s := range []time.Duration{time.Second, 5 * time.Second, 10 * time.Second, 30 * time.Second, time.Minute} {
		step = s
		if end/s <= 10 {
			break
		}
	}
	out := make([]time.Duration, 0, 11)
	for t := time.Duration(0); t <= end; t += step {
		out = append(out, t)
	}
	return out
}
