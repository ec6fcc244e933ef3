package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/logging"
	"github.com/san-kum/pastryfall/internal/metrics"
	"github.com/san-kum/pastryfall/internal/scene"
	"github.com/san-kum/pastryfall/internal/storage"
)

type Options struct {
	Frames      int
	SampleEvery int
	// ResetAt lists frames before which every body is sent back to spawn.
	ResetAt []int
	// WaitForAssets blocks before the first frame until every kind has loaded,
	// spawning in catalog order so a seed reproduces the same run.
	WaitForAssets bool
}

type Result struct {
	Frames  int
	Bodies  int
	Failed  []scene.Batch
	Trace   *storage.Trace
	Metrics map[string]float64
	Elapsed time.Duration
}

// Experiment drives one headless run: it is the only goroutine touching the simulator.
type Experiment struct {
	cfg       *config.Config
	loader    *scene.Loader
	simulator *fall.Simulator
}

func New(cfg *config.Config, loader *scene.Loader) *Experiment {
	return &Experiment{
		cfg:       cfg,
		loader:    loader,
		simulator: fall.New(cfg.Physics, cfg.Seed),
	}
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *fall.Simulator {
	return e.simulator
}

func (e *Experiment) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}

	log := logging.Logger()
	start := time.Now()

	set := metrics.Default(e.cfg.Physics)
	rec := storage.NewRecorder(opts.SampleEvery)
	e.simulator.AddObserver(set)
	e.simulator.AddObserver(rec)

	resets := make(map[int]bool, len(opts.ResetAt))
	for _, f := range opts.ResetAt {
		resets[f] = true
	}

	result := &Result{}
	batches := e.loader.LoadAll(ctx, e.cfg.Pastries)

	if opts.WaitForAssets {
		all := make([]scene.Batch, 0, len(e.cfg.Pastries))
		for b := range batches {
			all = append(all, b)
		}
		order := make(map[string]int, len(e.cfg.Pastries))
		for i, k := range e.cfg.Pastries {
			order[k.Name] = i
		}
		sort.SliceStable(all, func(i, j int) bool { return order[all[i].Kind.Name] < order[all[j].Kind.Name] })
		for _, b := range all {
			e.accept(b, result)
		}
		batches = nil
	}

	for frame := 1; frame <= opts.Frames; frame++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		batches = e.drain(batches, result)

		if resets[frame] {
			log.Debug("reset", "frame", frame, "bodies", e.simulator.Len())
			e.simulator.Reset()
		}

		e.simulator.Step()
		result.Frames++
	}

	result.Bodies = e.simulator.Len()
	result.Trace = rec.Trace()
	result.Metrics = set.Values()
	result.Elapsed = time.Since(start)
	return result, nil
}

// drain appends whatever batches have completed without waiting for the rest.
func (e *Experiment) drain(batches <-chan scene.Batch, result *Result) <-chan scene.Batch {
	for batches != nil {
		select {
		case b, ok := <-batches:
			if !ok {
				return nil
			}
			e.accept(b, result)
		default:
			return batches
		}
	}
	return nil
}

func (e *Experiment) accept(b scene.Batch, result *Result) {
	if b.Err != nil {
		result.Failed = append(result.Failed, b)
		return
	}
	Spawn(e.simulator, b)
}

// Spawn registers every node of a loaded batch with the simulator.
func Spawn(s *fall.Simulator, b scene.Batch) int {
	n := 0
	for _, node := range b.Nodes {
		if _, err := s.Spawn(b.Kind.Name, node); err == nil {
			n++
		}
	}
	return n
}
