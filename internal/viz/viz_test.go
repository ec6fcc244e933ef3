package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/scene"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Pixels(); w != 8 || h != 8 {
		t.Fatalf("pixels = %dx%d, want 8x8", w, h)
	}
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("pixel not set")
	}
	if c.IsSet(2, 5) {
		t.Error("neighbour set")
	}
	c.Set(-1, 0)
	c.Set(100, 100)
	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("clear left pixel set")
	}
	if got := strings.Count(c.String(), "\n"); got != 1 {
		t.Errorf("rows separated by %d newlines, want 1", got)
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Fatalf("diagonal pixel %d missing", i)
		}
	}
}

func TestCameraProjectsTargetToCentre(t *testing.T) {
	cam := NewCamera()
	x, y, ok := cam.Project(mgl64.Vec3{}, 200, 100)
	if !ok {
		t.Fatal("target not visible")
	}
	if absInt(x-100) > 1 || absInt(y-50) > 1 {
		t.Errorf("target at (%d,%d), want (100,50)", x, y)
	}
}

func TestCameraBehind(t *testing.T) {
	cam := NewCamera()
	eye := cam.Eye()
	if _, _, ok := cam.Project(eye.Mul(2), 200, 100); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestCameraOrbitAndZoom(t *testing.T) {
	cam := NewCamera()
	start := cam.Eye()
	if !start.ApproxEqual(mgl64.Vec3{20, 30, 10}) {
		t.Fatalf("eye = %v, want (20,30,10)", start)
	}
	cam.Orbit(0.5)
	if e := cam.Eye(); e.Y() != start.Y() || e.ApproxEqual(start) {
		t.Errorf("orbit moved eye to %v", e)
	}
	cam.ZoomIn()
	if cam.Eye().Len() >= start.Len() {
		t.Error("zoom in did not move the camera closer")
	}
	for i := 0; i < 50; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.2 {
		t.Errorf("zoom = %v, below limit", cam.Zoom)
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewModel(context.Background(), cfg, scene.NewLoader(""))
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadBatch(t *testing.T, m Model) batchMsg {
	t.Helper()
	return batchMsg(m.loader.Load(context.Background(), m.cfg.Pastries[0]))
}

func TestModelAcceptsBatches(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, loadBatch(t, m))
	if got := m.sim.Len(); got != m.cfg.Pastries[0].Count {
		t.Fatalf("bodies = %d, want %d", got, m.cfg.Pastries[0].Count)
	}

	m, _ = update(t, m, batchMsg(scene.Batch{Kind: scene.Kind{Name: "cake"}, Err: scene.ErrNoVertices}))
	if len(m.failed) != 1 || m.failed[0] != "cake" {
		t.Errorf("failed = %v", m.failed)
	}
	if m.sim.Len() != m.cfg.Pastries[0].Count {
		t.Error("failed batch changed the body count")
	}
}

func TestModelTickSteps(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, loadBatch(t, m))
	m, cmd := update(t, m, TickMsg(time.Now()))
	if m.sim.Tick() != 1 {
		t.Errorf("tick = %d, want 1", m.sim.Tick())
	}
	if cmd == nil {
		t.Error("tick did not schedule the next frame")
	}
	if len(m.heights) != 1 {
		t.Errorf("height history = %d, want 1", len(m.heights))
	}
}

func TestModelPauseAndStep(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, loadBatch(t, m))
	m, _ = update(t, m, key(" "))
	if m.running {
		t.Fatal("space did not pause")
	}
	m, _ = update(t, m, TickMsg(time.Now()))
	if m.sim.Tick() != 0 {
		t.Error("paused model stepped")
	}
	m, _ = update(t, m, key("s"))
	if m.sim.Tick() != 1 {
		t.Error("s did not single-step")
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, loadBatch(t, m))
	for i := 0; i < 5000; i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	m, _ = update(t, m, key("r"))
	boundary := m.cfg.Physics.Boundary()
	for _, b := range m.sim.Bodies() {
		if b.Velocity != 0 || b.Height() < m.cfg.Physics.Spawn.MinY {
			t.Fatalf("body not respawned: y=%v v=%v (boundary %v)", b.Height(), b.Velocity, boundary)
		}
	}
	if len(m.heights) != 0 {
		t.Error("reset kept height history")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, loadBatch(t, m))
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, TickMsg(time.Now()))
	view := m.View()
	for _, want := range []string{"PASTRYFALL", "Tick", "Bodies", "Resting", "Bounces"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNextThemeCycles(t *testing.T) {
	th := themes[0]
	for range themes {
		th = NextTheme(th)
	}
	if th.Name != themes[0].Name {
		t.Errorf("cycled to %s", th.Name)
	}
	if GetTheme("nope").Name != themes[0].Name {
		t.Error("unknown theme did not fall back")
	}
}

func TestMenuStartsPreset(t *testing.T) {
	app := NewInteractiveApp(context.Background(), scene.NewLoader(""))
	next, _ := app.Update(key("j"))
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(menu)
	if m.state != stateSim {
		t.Fatal("enter did not start the live view")
	}
	if cmd == nil {
		t.Error("live view not initialised")
	}
	if m.live.cfg == nil || m.live.expected == 0 {
		t.Error("live view has no pastries")
	}
}

func TestMenuPassesWindowSizeToLiveView(t *testing.T) {
	app := NewInteractiveApp(context.Background(), scene.NewLoader(""))
	next, _ := app.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(menu)
	if m.state != stateSim {
		t.Fatal("enter did not start the live view")
	}
	if m.live.canvas.Width != 160-panelWidth-4 || m.live.canvas.Height != 48 {
		t.Errorf("canvas = %dx%d, want %dx48", m.live.canvas.Width, m.live.canvas.Height, 160-panelWidth-4)
	}
}
