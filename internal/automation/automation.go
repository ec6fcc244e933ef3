package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/experiment"
	"github.com/san-kum/pastryfall/internal/logging"
	"github.com/san-kum/pastryfall/internal/optim"
	"github.com/san-kum/pastryfall/internal/scene"
	"github.com/san-kum/pastryfall/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Preset  string             `yaml:"preset"`
	Seed    int64              `yaml:"seed"`
	Frames  int                `yaml:"frames"`
	Every   int                `yaml:"every"`
	ResetAt []int              `yaml:"reset_at,flow"`
	Params  map[string]float64 `yaml:"params"`
	SaveAs  string             `yaml:"save_as"`
}

type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config builds the scene configuration for a step: preset (classic when
// empty), then seed, then physics overrides.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "classic"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Params {
		set, ok := optim.Setters[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", optim.ErrUnknownParam, k)
		}
		set(&cfg.Physics, v)
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step in order. When store is non-nil each
// step's trace is saved and its run id reported.
func RunScenario(ctx context.Context, scenario *Scenario, loader *scene.Loader, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := logging.Logger().With("scenario", scenario.Name)

	for i, step := range scenario.Steps {
		log.Info("running step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		frames := step.Frames
		if frames == 0 {
			frames = 6000
		}
		opts := experiment.Options{Frames: frames, SampleEvery: step.Every, ResetAt: step.ResetAt, WaitForAssets: true}
		result, err := experiment.New(cfg, loader).Run(ctx, opts)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if store != nil {
			label := step.SaveAs
			if label == "" {
				label = step.Preset
			}
			sr.RunID, err = store.Save(storage.RunMetadata{
				Preset:   label,
				Seed:     cfg.Seed,
				Frames:   result.Frames,
				Bodies:   result.Bodies,
				Every:    opts.SampleEvery,
				Params:   cfg.Physics,
				Pastries: cfg.Pastries,
				Metrics:  result.Metrics,
			}, result.Trace)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
