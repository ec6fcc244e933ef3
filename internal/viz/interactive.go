package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/scene"
)

var presetInfo = map[string]string{
	"classic": "the dessert plate",
	"moon":    "lunar gravity",
	"bouncy":  "springy dough",
	"dense":   "a crowded plate",
	"cookies": "cookies only",
}

const (
	stateMenu = iota
	stateSim
)

type menu struct {
	ctx     context.Context
	loader  *scene.Loader
	state   int
	cursor  int
	presets []string
	size    *tea.WindowSizeMsg
	live    Model
}

// NewInteractiveApp returns a preset picker that starts the live view.
func NewInteractiveApp(ctx context.Context, loader *scene.Loader) tea.Model {
	names := config.ListPresets()
	sort.Strings(names)
	return menu{ctx: ctx, loader: loader, presets: names}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	var key tea.KeyMsg
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = &msg
		return m, nil
	case tea.KeyMsg:
		key = msg
	default:
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	cfg := config.GetPreset(m.presets[m.cursor])
	if cfg == nil {
		return m, nil
	}
	m.live = NewModel(m.ctx, cfg, m.loader)
	if m.size != nil {
		next, _ := m.live.Update(*m.size)
		m.live = next.(Model)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	t := ThemeFrosting
	title := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.Muted)
	active := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.Secondary)
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("PASTRYFALL") + "\n    " + sub.Render("pastries falling on a plate") + "\n    " + sub.Render("───────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", key.Render("▸"), active.Render(fmt.Sprintf("%-10s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-10s", name)), sub.Render(presetInfo[name])))
		}
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" drop  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(ctx context.Context, loader *scene.Loader) error {
	_, err := tea.NewProgram(NewInteractiveApp(ctx, loader), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
