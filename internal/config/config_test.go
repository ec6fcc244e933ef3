package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/san-kum/pastryfall/internal/fall"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FPS != DefaultFPS {
		t.Errorf("expected fps %d, got %d", DefaultFPS, cfg.FPS)
	}
	if len(cfg.Pastries) != 5 {
		t.Errorf("expected 5 pastry kinds, got %d", len(cfg.Pastries))
	}
	if cfg.Physics.Boundary() != 0.5 {
		t.Errorf("expected floor boundary 0.5, got %g", cfg.Physics.Boundary())
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bouncy")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Physics.BounceFactor != 0.9 {
		t.Errorf("expected bounce 0.9, got %g", cfg.Physics.BounceFactor)
	}

	cfg.Pastries[0].Count = 99
	if Presets["bouncy"].Pastries[0].Count == 99 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	sort.Strings(names)
	idx := sort.SearchStrings(names, "classic")
	if idx == len(names) || names[idx] != "classic" {
		t.Errorf("classic preset missing from %v", names)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Physics.BounceFactor = 0.5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Seed != 42 || loaded.Physics.BounceFactor != 0.5 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.Physics.Spawn.Rotation != cfg.Physics.Spawn.Rotation {
		t.Errorf("spawn rotation %v, want %v", loaded.Physics.Spawn.Rotation, cfg.Physics.Spawn.Rotation)
	}
	if len(loaded.Pastries) != len(cfg.Pastries) {
		t.Errorf("expected %d pastries, got %d", len(cfg.Pastries), len(loaded.Pastries))
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	src := "fps: 30\nphysics:\n  bounce_factor: 0.5\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.FPS != 30 || cfg.Physics.BounceFactor != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Physics.Gravity != fall.DefaultParams().Gravity {
		t.Errorf("expected default gravity, got %g", cfg.Physics.Gravity)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"bounce too high", "physics:\n  bounce_factor: 1.5\n", fall.ErrParameterBounds},
		{"zero fps", "fps: 0\n", ErrInvalid},
		{"empty pastry", "pastries:\n  - name: cake\n    scale: 0.1\n    count: 0\n", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene.yaml")
			if err := os.WriteFile(path, []byte(tt.src), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
