package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the live view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
}

var (
	ThemeFrosting = Theme{
		Name:      "frosting",
		Primary:   lipgloss.Color("#ff79c6"), // pink icing
		Secondary: lipgloss.Color("#f1fa8c"),
		Accent:    lipgloss.Color("#8be9fd"),
		Text:      lipgloss.Color("#f8f8f2"),
		Muted:     lipgloss.Color("#6272a4"),
		Success:   lipgloss.Color("#50fa7b"),
		Warning:   lipgloss.Color("#ffb86c"),
	}

	ThemeChocolate = Theme{
		Name:      "chocolate",
		Primary:   lipgloss.Color("#d2691e"),
		Secondary: lipgloss.Color("#f4a460"),
		Accent:    lipgloss.Color("#ffe4b5"),
		Text:      lipgloss.Color("#fff8dc"),
		Muted:     lipgloss.Color("#8b5a2b"),
		Success:   lipgloss.Color("#9acd32"),
		Warning:   lipgloss.Color("#ff6347"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
	}
)

var themes = []Theme{ThemeFrosting, ThemeChocolate, ThemeMinimal}

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme cycles through the available themes.
func NextTheme(current Theme) Theme {
	for i, t := range themes {
		if t.Name == current.Name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// Styles is the set of lipgloss styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Status lipgloss.Style
	Warn   lipgloss.Style
	Panel  lipgloss.Style
	Scene  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Muted:  lipgloss.NewStyle().Foreground(t.Muted),
		Status: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warn:   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(0, 1),
		Scene: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Foreground(t.Accent),
	}
}
