package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/scene"
)

func sampleTrace() *Trace {
	return &Trace{
		Ticks:   []int{0, 10, 20},
		Heights: [][]float64{{}, {9.5}, {9.0, 12.25}},
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Preset:   "classic",
		Seed:     42,
		Frames:   20,
		Bodies:   2,
		Every:    10,
		Params:   fall.DefaultParams(),
		Pastries: scene.DefaultCatalog(),
		Metrics:  map[string]float64{"bounces": 3},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleTrace())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "classic_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Seed != 42 || meta.Metrics["bounces"] != 3 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Params.BounceFactor != 0.7 || len(meta.Pastries) != 5 {
		t.Errorf("params not persisted: %+v", meta.Params)
	}

	tr, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if tr.Len() != 3 || tr.Width() != 2 {
		t.Fatalf("expected 3x2 trace, got %dx%d", tr.Len(), tr.Width())
	}
	if tr.Heights[2][1] != 12.25 {
		t.Errorf("expected 12.25, got %g", tr.Heights[2][1])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(sampleMeta(), sampleTrace()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(sampleMeta(), sampleTrace())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, heightsFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	meta := sampleMeta()
	var buf bytes.Buffer
	if err := ExportJSON(&buf, &meta, sampleTrace()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out struct {
		Ticks   []int       `json:"ticks"`
		Heights [][]float64 `json:"heights"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out.Ticks) != 3 || len(out.Heights[2]) != 2 {
		t.Errorf("unexpected export %+v", out)
	}
}

func TestReadCSVBadRow(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("tick,h0\nx,1.0\n")); err == nil {
		t.Error("expected error for bad tick")
	}
}

func TestRecorder(t *testing.T) {
	p := fall.DefaultParams()
	s := fall.New(p, 1)
	n := scene.NewNode("cake", 0.1, scene.DefaultExtent)
	n.SetPosition(mgl64.Vec3{0, 10, 0})
	s.Add(&fall.Body{Kind: "cake", Handle: n})

	rec := NewRecorder(5)
	s.AddObserver(rec)
	for i := 0; i < 20; i++ {
		s.Step()
	}

	tr := rec.Trace()
	if tr.Len() != 4 {
		t.Fatalf("expected 4 samples, got %d", tr.Len())
	}
	if tr.Ticks[0] != 5 || tr.Ticks[3] != 20 {
		t.Errorf("unexpected ticks %v", tr.Ticks)
	}
	series := tr.Series(0)
	for i := 1; i < len(series); i++ {
		if series[i] >= series[i-1] {
			t.Errorf("falling body rose: %v", series)
		}
	}
	if len(tr.Mean()) != 4 {
		t.Errorf("expected 4 means, got %d", len(tr.Mean()))
	}
}

func TestSaveSamePresetKeepsBothRuns(t *testing.T) {
	st := New(t.TempDir())

	ids := make(map[string]int)
	for i := 1; i <= 20; i++ {
		meta := sampleMeta()
		meta.Frames = i
		id, err := st.Save(meta, sampleTrace())
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
		if prev, ok := ids[id]; ok {
			t.Fatalf("run %d reused id %s of run %d", i, id, prev)
		}
		ids[id] = i
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 20 {
		t.Fatalf("expected 20 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.Frames != ids[r.ID] {
			t.Errorf("run %s stores frames=%d, want %d", r.ID, r.Frames, ids[r.ID])
		}
	}
}

func TestNewRunDirSuffix(t *testing.T) {
	st := New(t.TempDir())
	a, _, err := st.newRunDir("classic_20260101-000000.000")
	if err != nil {
		t.Fatal(err)
	}
	b, dir, err := st.newRunDir("classic_20260101-000000.000")
	if err != nil {
		t.Fatal(err)
	}
	if a == b || b != "classic_20260101-000000.000-2" {
		t.Errorf("ids %s and %s", a, b)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("run dir not created: %v", err)
	}
}
