package export

import (
	"strings"
	"testing"
	"time"

	"github.com/san-kum/mapstory/internal/trace"
)

func TestGanttToSVG(t *testing.T) {
	s := time.Second
	events := []trace.Event{
		{At: 0, Kind: trace.KindShow, Layer: "bedrock"},
		{At: 6 * s, Kind: trace.KindStep},
		{At: 6 * s, Kind: trace.KindHide, Layer: "bedrock"},
		{At: 6 * s, Kind: trace.KindWaitStart},
		{At: 9 * s, Kind: trace.KindShow, Layer: "melt<days>"},
		{At: 9 * s, Kind: trace.KindWaitEnd},
	}
	samples := []trace.Sample{{At: 0, Progress: 0.1}, {At: 9 * s, Progress: 0.5}}

	svg := GanttToSVG(events, samples, 800)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an SVG document")
	}
	if got := strings.Count(svg, `rx="2"`); got != 2 {
		t.Errorf("expected 2 layer spans, got %d", got)
	}
	if !strings.Contains(svg, "melt&lt;days&gt;") {
		t.Error("layer label not escaped")
	}
	if !strings.Contains(svg, "<line") || !strings.Contains(svg, "<path") {
		t.Error("missing step ticks or progress path")
	}
}

func TestGanttEmptyTrace(t *testing.T) {
	svg := GanttToSVG(nil, nil, 50)
	if !strings.Contains(svg, "<svg") {
		t.Error("empty trace should still render a document")
	}
}

func TestTicks(t *testing.T) {
	if n := len(ticks(90 * time.Second)); n > 11 {
		t.Errorf("too many ticks: %d", n)
	}
	if got := ticks(3 * time.Second); len(got) != 4 {
		t.Errorf("ticks(3s) = %v", got)
	}
}
