package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the player's color scheme.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Land       lipgloss.Color
	Wait       lipgloss.Color
}

var (
	ThemeGlacier = Theme{
		Name:       "glacier",
		Primary:    lipgloss.Color("#7fdbff"),
		Secondary:  lipgloss.Color("#39a0ca"),
		Accent:     lipgloss.Color("#f0f8ff"),
		Background: lipgloss.Color("#0b1d2a"),
		Text:       lipgloss.Color("#e6f4fb"),
		Muted:      lipgloss.Color("#4d7185"),
		Land:       lipgloss.Color("#9fd3c7"),
		Wait:       lipgloss.Color("#ffb347"),
	}

	ThemeNight = Theme{
		Name:       "night",
		Primary:    lipgloss.Color("#b48ead"),
		Secondary:  lipgloss.Color("#5e81ac"),
		Accent:     lipgloss.Color("#ebcb8b"),
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#d8dee9"),
		Muted:      lipgloss.Color("#4c566a"),
		Land:       lipgloss.Color("#a3be8c"),
		Wait:       lipgloss.Color("#d08770"),
	}

	ThemePaper = Theme{
		Name:       "paper",
		Primary:    lipgloss.Color("#1d3557"),
		Secondary:  lipgloss.Color("#457b9d"),
		Accent:     lipgloss.Color("#e63946"),
		Background: lipgloss.Color("#f1faee"),
		Text:       lipgloss.Color("#222222"),
		Muted:      lipgloss.Color("#888888"),
		Land:       lipgloss.Color("#6a994e"),
		Wait:       lipgloss.Color("#bc6c25"),
	}

	Themes = []Theme{ThemeGlacier, ThemeNight, ThemePaper}
)

// GetTheme returns a theme by name, falling back to glacier.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeGlacier
}

// NextTheme cycles through Themes.
func NextTheme(current string) Theme {
	for i, t := range Themes {
		if t.Name == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
