package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/experiment"
	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/logging"
	"github.com/san-kum/pastryfall/internal/metrics"
	"github.com/san-kum/pastryfall/internal/scene"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 600
)

type TickMsg time.Time

// batchMsg carries a finished asset load into the event loop.
type batchMsg scene.Batch

// Model is the live view: it owns the simulator and steps it once per tick.
type Model struct {
	ctx      context.Context
	cfg      *config.Config
	loader   *scene.Loader
	sim      *fall.Simulator
	metrics  *metrics.Set
	plate    *scene.Node
	canvas   *Canvas
	camera   *Camera
	theme    Theme
	styles   Styles
	running  bool
	showHelp bool
	frame    time.Duration
	expected int
	failed   []string
	heights  []float64
}

func NewModel(ctx context.Context, cfg *config.Config, loader *scene.Loader) Model {
	sim := fall.New(cfg.Physics, cfg.Seed)
	set := metrics.Default(cfg.Physics)
	sim.AddObserver(set)

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	theme := ThemeFrosting
	return Model{
		ctx:      ctx,
		cfg:      cfg,
		loader:   loader,
		sim:      sim,
		metrics:  set,
		plate:    scene.Plate(),
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		theme:    theme,
		styles:   NewStyles(theme),
		running:  true,
		frame:    time.Second / time.Duration(fps),
		expected: scene.Total(cfg.Pastries),
		heights:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Init schedules the first frame and one load per pastry kind.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	for _, k := range m.cfg.Pastries {
		cmds = append(cmds, m.load(k))
	}
	return tea.Batch(cmds...)
}

func (m Model) load(k scene.Kind) tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg { return batchMsg(loader.Load(ctx, k)) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-panelWidth-4)
		h := max(10, msg.Height-2)
		m.canvas = NewCanvas(w, h)
	case batchMsg:
		m.accept(scene.Batch(msg))
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.sim.Reset()
		m.heights = m.heights[:0]
	case "s":
		if !m.running {
			m.step()
		}
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "x", "left":
		m.camera.Orbit(-0.1)
	case "y", "right":
		m.camera.Orbit(0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	m.draw()
	return m, nil
}

func (m *Model) accept(b scene.Batch) {
	if b.Err != nil {
		m.failed = append(m.failed, b.Kind.Name)
		return
	}
	n := experiment.Spawn(m.sim, b)
	logging.Logger().Debug("pastries added", "kind", b.Kind.Name, "count", n, "total", m.sim.Len())
}

func (m *Model) step() {
	m.sim.Step()
	bodies := m.sim.Bodies()
	if len(bodies) == 0 {
		return
	}
	sum := 0.0
	for _, b := range bodies {
		sum += b.Height()
	}
	m.heights = append(m.heights, sum/float64(len(bodies)))
	if len(m.heights) > historyCapacity {
		m.heights = m.heights[1:]
	}
}

func (m *Model) draw() {
	RenderScene(m.canvas, m.camera, m.plate, m.sim.Bodies())
}

// RenderScene draws the plate and every body onto cv as wireframes.
// Bodies whose handle is not a scene node are drawn as dots.
func RenderScene(cv *Canvas, cam *Camera, plate *scene.Node, bodies []*fall.Body) {
	cv.Clear()
	w, h := cv.Pixels()
	mvp := cam.matrix(w, h)
	if plate != nil {
		drawBox(cv, mvp, plate)
	}
	for _, b := range bodies {
		if n, ok := b.Handle.(*scene.Node); ok {
			drawBox(cv, mvp, n)
			continue
		}
		if x, y, ok := projectWith(mvp, b.Position(), w, h); ok {
			cv.Dot(x, y)
		}
	}
}

func drawBox(cv *Canvas, mvp mgl64.Mat4, n *scene.Node) {
	corners := n.Corners()
	for _, e := range scene.BoxEdges {
		DrawSegment(cv, mvp, corners[e[0]], corners[e[1]])
	}
}

func (m Model) status() string {
	switch {
	case !m.running:
		return m.styles.Warn.Render("PAUSED")
	case m.sim.Len() > 0 && m.sim.Resting() == m.sim.Len():
		return m.styles.Status.Render("SETTLED")
	default:
		return m.styles.Status.Render("FALLING")
	}
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder
	s.WriteString(st.Title.Render("PASTRYFALL") + "  " + m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	vals := m.metrics.Values()
	row("Tick", fmt.Sprintf("%d", m.sim.Tick()))
	row("Bodies", fmt.Sprintf("%d/%d", m.sim.Len(), m.expected))
	row("Resting", fmt.Sprintf("%d", m.sim.Resting()))
	row("Bounces", fmt.Sprintf("%.0f", vals["bounces"]))
	row("Speed", fmt.Sprintf("%.4f", vals["mean_speed"]))
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))
	if len(m.failed) > 0 {
		s.WriteString(st.Warn.Render("missing: "+strings.Join(m.failed, ", ")) + "\n")
	}

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights,
			asciigraph.Height(6), asciigraph.Width(panelWidth-12), asciigraph.Caption("mean height"))
		s.WriteString("\n" + chart + "\n")
	}

	if m.showHelp {
		s.WriteString(st.Muted.Render("\nspace  pause/resume\ns      step (paused)\nr      drop again\nx/y    orbit camera\n+/-    zoom\nt      theme (" + m.theme.Name + ")\nq      quit"))
	} else {
		s.WriteString(st.Muted.Render("\nSP:Pause R:Reset Q:Quit ?:Help"))
	}

	panel := st.Panel.Width(panelWidth).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, st.Scene.Render(m.canvas.String()), panel)
}

// Run starts the live view for cfg and blocks until the user quits.
func Run(ctx context.Context, cfg *config.Config, loader *scene.Loader) error {
	_, err := tea.NewProgram(NewModel(ctx, cfg, loader), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
