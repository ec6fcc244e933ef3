package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/pastryfall/internal/config"
	"github.com/san-kum/pastryfall/internal/experiment"
	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/scene"
)

var ErrUnknownParam = errors.New("unknown parameter")

// Setters maps the yaml names of the tunable physics parameters to their fields.
var Setters = map[string]func(p *fall.Params, v float64){
	"gravity":        func(p *fall.Params, v float64) { p.Gravity = v },
	"bounce_factor":  func(p *fall.Params, v float64) { p.BounceFactor = v },
	"rest_threshold": func(p *fall.Params, v float64) { p.RestThreshold = v },
	"spin_step":      func(p *fall.Params, v float64) { p.SpinStep = v },
	"body_radius":    func(p *fall.Params, v float64) { p.BodyRadius = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Setters))
	for n := range Setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Score reads a metric for minimisation. An unsettled run scores +Inf.
func Score(metrics map[string]float64, name string) float64 {
	v, ok := metrics[name]
	if !ok {
		return math.Inf(1)
	}
	if name == "settle_tick" && v < 0 {
		return math.Inf(1)
	}
	return v
}

type Trial struct {
	Params map[string]float64
	Score  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if _, ok := Setters[p]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs one experiment per grid point and returns the lowest-scoring
// point for metricName along with every trial. Points whose physics fail
// validation are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	loader *scene.Loader,
	opts experiment.Options,
	metricName string,
) (map[string]float64, float64, []Trial, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(point map[string]float64) error {
		cfg := base.Clone()
		for k, v := range point {
			Setters[k](&cfg.Physics, v)
		}
		if err := cfg.Physics.Validate(); err != nil {
			return nil
		}

		result, err := experiment.New(cfg, loader).Run(ctx, opts)
		if err != nil {
			return err
		}

		val := Score(result.Metrics, metricName)
		trials = append(trials, Trial{Params: point, Score: val})
		if bestParams == nil || val < best {
			best = val
			bestParams = point
		}
		return nil
	})
	return bestParams, best, trials, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(map[string]float64) error,
) error {
	if depth == len(g.paramNames) {
		return evaluate(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		if err := ctx.Err(); err != nil {
			return err
		}
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate); err != nil {
			return err
		}
	}
	return nil
}
