package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mapstory/internal/timeline"
)

// Selection is what the menu hands back to the caller.
type Selection struct {
	Main     int
	Preset   string
	Autoplay bool
	Quit     bool
}

type state int

const (
	stateSteps state = iota
	stateConfig
)

// menu picks a starting step, then a pacing preset.
type menu struct {
	state   state
	title   string
	steps   []timeline.Step
	presets []string

	cursor       int
	presetCursor int
	sel          Selection
	done         bool
}

func newMenu(title string, steps []timeline.Step, presets []string, preset string) menu {
	m := menu{title: title, steps: steps, presets: presets, sel: Selection{Autoplay: true}}
	for i, p := range presets {
		if p == preset {
			m.presetCursor = i
		}
	}
	return m
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		m.sel.Quit = true
		return m, tea.Quit
	}
	switch m.state {
	case stateSteps:
		return m.stepsKey(key)
	default:
		return m.configKey(key)
	}
}

func (m menu) stepsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.sel.Quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.steps)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.sel.Main = m.cursor
		m.state = stateConfig
	}
	return m, nil
}

func (m menu) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateSteps
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}
	case "a":
		m.sel.Autoplay = !m.sel.Autoplay
	case "enter", "s":
		if len(m.presets) > 0 {
			m.sel.Preset = m.presets[m.presetCursor]
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
)

func (m menu) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(m.title)) + "\n")

	switch m.state {
	case stateSteps:
		b.WriteString(dim.Render("start at") + "\n\n")
		for i, s := range m.steps {
			line := fmt.Sprintf("%d. %-20s %s", i+1, s.Name, dim.Render(fmt.Sprintf("%d beats", s.Len())))
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> ") + white.Render(line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n" + dim.Render("↑↓ select  enter choose  q quit"))
	case stateConfig:
		b.WriteString(dim.Render(fmt.Sprintf("from %s, pacing", m.steps[m.sel.Main].Name)) + "\n\n")
		for i, p := range m.presets {
			if i == m.presetCursor {
				b.WriteString(selectedStyle.Render("> "+p) + "\n")
			} else {
				b.WriteString("  " + p + "\n")
			}
		}
		auto := "off"
		if m.sel.Autoplay {
			auto = "on"
		}
		b.WriteString("\n" + white.Render("autoplay ") + green.Render(auto) + "\n")
		b.WriteString("\n" + dim.Render("↑↓ preset  a autoplay  enter start  esc back"))
	}
	return b.String()
}

// RunMenu shows the start menu and returns the choice. Selection.Quit is
// set when the user left without choosing.
func RunMenu(title string, steps []timeline.Step, presets []string, preset string) (Selection, error) {
	if len(steps) == 0 {
		return Selection{}, fmt.Errorf("story has no steps")
	}
	final, err := tea.NewProgram(newMenu(title, steps, presets, preset)).Run()
	if err != nil {
		return Selection{}, err
	}
	m := final.(menu)
	if !m.done {
		m.sel.Quit = true
	}
	return m.sel, nil
}
