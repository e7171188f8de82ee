package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/trace"
)

const (
	mapWidth     = 40
	mapHeight    = 10
	logLines     = 8
	graphPoints  = 60
	barWidth     = 12
	captionWidth = 58
)

type TickMsg time.Time

// Player is the interactive front end. The engine is only touched from
// Update, which Bubble Tea runs on one goroutine.
type Player struct {
	eng      *engine.Engine
	rec      *trace.Recorder
	title    string
	frame    time.Duration
	theme    Theme
	styles   styles
	minimap  *Minimap
	log      []string
	seen     int
	showHelp bool
	status   string
}

func NewPlayer(eng *engine.Engine, rec *trace.Recorder, title string, frame time.Duration, theme string) Player {
	t := GetTheme(theme)
	return Player{
		eng:     eng,
		rec:     rec,
		title:   title,
		frame:   frame,
		theme:   t,
		styles:  newStyles(t),
		minimap: NewMinimap(mapWidth, mapHeight),
		log:     make([]string, 0, logLines),
	}
}

func (m Player) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Player) Init() tea.Cmd { return m.tick() }

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.eng.Tick(m.frame)
		m.minimap.Track(m.eng.View())
		m.collect()
		return m, m.tick()
	}
	return m, nil
}

func (m Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.eng.Toggle()
	case "right", "l":
		if !m.eng.Next() {
			m.status = "next refused"
		}
	case "left", "h":
		if !m.eng.Previous() {
			m.status = "previous refused"
		}
	case "s":
		m.report(m.eng.SetSubScene(m.nextSubScene()))
	case "p":
		m.report(m.eng.SetPage(m.nextPage()))
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if !m.eng.GoToStep(int(key[0]-'1'), 0) {
				m.status = "no step " + key
			}
		}
	}
	m.collect()
	return m, nil
}

func (m *Player) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m Player) nextSubScene() nav.SubScene {
	subs := m.eng.Registry().Catalog().SubScenes
	cur := m.eng.State().SubScene
	for i, s := range subs {
		if s == cur {
			return subs[(i+1)%len(subs)]
		}
	}
	return subs[0]
}

func (m Player) nextPage() nav.Page {
	pages := m.eng.Registry().Catalog().Pages
	cur := m.eng.State().Page
	for i, p := range pages {
		if p.Page == cur {
			return pages[(i+1)%len(pages)].Page
		}
	}
	return pages[0].Page
}

// collect moves new trace events into the scrolling log.
func (m *Player) collect() {
	events := m.rec.Events()
	for ; m.seen < len(events); m.seen++ {
		m.log = append(m.log, events[m.seen].String())
	}
	if len(m.log) > logLines {
		m.log = append(m.log[:0], m.log[len(m.log)-logLines:]...)
	}
}

func (m Player) View() string {
	s := m.styles
	st := m.eng.State()
	main, content := m.eng.Position()
	steps := m.eng.Steps()

	var left strings.Builder
	left.WriteString(s.title.Render(strings.ToUpper(m.title)) + "\n")

	status := s.paused.Render("PAUSED")
	if m.eng.Playing() {
		status = s.playing.Render("PLAYING")
	}
	if m.eng.Waiting() {
		status += "  " + s.waiting.Render("waiting for next scene")
	}
	left.WriteString(status + "\n\n")

	name := ""
	if main < len(steps) {
		name = steps[main].Name
	}
	left.WriteString(m.row("Step", fmt.Sprintf("%d/%d %s", main+1, len(steps), name)))
	if main < len(steps) {
		left.WriteString(m.row("Beat", fmt.Sprintf("%d/%d", content+1, steps[main].Len())))
	}
	left.WriteString(m.row("Where", st.String()))
	left.WriteString(m.row("Clock", fmt.Sprintf("%.1fs", m.eng.Now().Seconds())))
	left.WriteString(m.row("Progress", ProgressBar(m.eng.Progress(), 30)+fmt.Sprintf(" %3.0f%%", m.eng.Progress()*100)))

	if caption, shown := m.eng.Overlay(); shown && caption != "" {
		left.WriteString("\n" + s.caption.Render(caption) + "\n")
	}

	v := m.eng.View()
	left.WriteString("\n" + s.mapView.Render(m.minimap.Render(v)) + "\n")
	left.WriteString(s.muted.Render(fmt.Sprintf("lon %.2f  lat %.2f  zoom %.1f  bearing %.0f", v.Longitude, v.Latitude, v.Zoom, v.Bearing)) + "\n")

	var right strings.Builder
	right.WriteString(s.label.Render("LAYERS") + "\n")
	right.WriteString(m.layers())
	if chart := m.graph(); chart != "" {
		right.WriteString("\n" + s.graph.Render(chart) + "\n")
	}
	right.WriteString("\n" + s.label.Render("EVENTS") + "\n")
	for _, line := range m.log {
		right.WriteString(s.muted.Render(line) + "\n")
	}
	if m.status != "" {
		right.WriteString(s.paused.Render(m.status) + "\n")
	}
	right.WriteString(s.help.Render(Separator(30) + "\nSP:Play ←→:Step 1-9:Jump\nS:Region P:Page T:Theme ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, s.panel.Render(left.String()), s.panel.Render(right.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

func (m Player) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

// layers lists every layer still on screen, exiting ones included.
func (m Player) layers() string {
	var b strings.Builder
	n := 0
	for _, d := range m.eng.Registry().Layers() {
		l, ok := m.eng.Layer(d.ID)
		if !ok {
			continue
		}
		switch l := l.(type) {
		case *camera.Sequencer:
			if !l.Visible() {
				continue
			}
			b.WriteString(fmt.Sprintf("%-16s %s\n", trim(d.ID, 16), l.Phase()))
		default:
			f, ok := m.eng.Fader(d.ID)
			if !ok || !f.Rendered() {
				continue
			}
			b.WriteString(fmt.Sprintf("%-16s %s %s\n", trim(d.ID, 16), ProgressBar(f.Opacity(), barWidth), f.Phase()))
		}
		n++
	}
	if n == 0 {
		return m.styles.muted.Render("(none)") + "\n"
	}
	return b.String()
}

func (m Player) graph() string {
	samples := m.rec.Samples()
	if len(samples) < 2 {
		return ""
	}
	if len(samples) > graphPoints {
		samples = samples[len(samples)-graphPoints:]
	}
	data := make([]float64, len(samples))
	for i, sm := range samples {
		data[i] = sm.Progress * 100
	}
	return asciigraph.Plot(data,
		asciigraph.Height(4),
		asciigraph.Width(30),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption("progress %"))
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  → / L    - Next beat                ║
║  ← / H    - Previous beat            ║
║  1..9     - Jump to a main step      ║
║  S        - Cycle sub-scenes         ║
║  P        - Cycle pages              ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the player full screen and blocks until the user quits.
func Run(p Player) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
