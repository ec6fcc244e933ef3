package experiment

import (
	"context"
	"sync"

	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/scene"
)

// Ensemble runs the same scene under consecutive seeds. Every run owns its
// simulator, so the runs proceed in parallel without sharing state.
type Ensemble struct {
	cfg       *config.Config
	loader    *scene.Loader
	numRuns   int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, loader *scene.Loader, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, loader: loader, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Seed(i int) int64 { return e.seedStart + int64(i) }

func (e *Ensemble) Run(ctx context.Context, opts Options) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.cfg.Clone()
			cfg.Seed = e.Seed(idx)
			results[idx], errs[idx] = New(cfg, e.loader).Run(ctx, opts)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
