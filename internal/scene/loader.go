package scene

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/pastryfall/internal/logging"
)

var ErrNoVertices = errors.New("scene: model has no vertices")

// DefaultExtent stands in for model bounds when no asset directory is configured.
var DefaultExtent = mgl64.Vec3{4, 4, 1.5}

// Batch is the outcome of loading one kind: Count fresh nodes, or an error and none.
type Batch struct {
	Kind    Kind
	Nodes   []*Node
	Err     error
	Elapsed time.Duration
}

type Loader struct {
	fsys fs.FS
}

// NewLoader reads models from dir. An empty dir loads every kind with DefaultExtent.
func NewLoader(dir string) *Loader {
	if dir == "" {
		return &Loader{}
	}
	return &Loader{fsys: os.DirFS(dir)}
}

func NewLoaderFS(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

func ModelPath(name string) string { return path.Join("models", name+".obj") }

func (l *Loader) Load(ctx context.Context, k Kind) Batch {
	start := time.Now()
	log := logging.Logger().With("kind", k.Name)

	extent := DefaultExtent
	if l.fsys != nil {
		e, verts, err := l.readModel(k.Name)
		if err != nil {
			log.Warn("model load failed", "err", err)
			return Batch{Kind: k, Err: err, Elapsed: time.Since(start)}
		}
		log.Debug("model parsed", "vertices", verts, "extent", e)
		extent = e
	}

	if err := ctx.Err(); err != nil {
		return Batch{Kind: k, Err: err, Elapsed: time.Since(start)}
	}

	proto := NewNode(k.Name, k.Scale, extent)
	nodes := make([]*Node, 0, k.Count)
	for i := 0; i < k.Count; i++ {
		nodes = append(nodes, proto.Clone())
	}
	log.Info("batch loaded", "count", len(nodes))
	return Batch{Kind: k, Nodes: nodes, Elapsed: time.Since(start)}
}

// LoadAll loads every kind concurrently. The channel is closed once all are done.
func (l *Loader) LoadAll(ctx context.Context, kinds []Kind) <-chan Batch {
	out := make(chan Batch, len(kinds))

	var wg sync.WaitGroup
	for _, k := range kinds {
		wg.Add(1)
		go func(k Kind) {
			defer wg.Done()
			out <- l.Load(ctx, k)
		}(k)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (l *Loader) readModel(name string) (mgl64.Vec3, int, error) {
	f, err := l.fsys.Open(ModelPath(name))
	if err != nil {
		return mgl64.Vec3{}, 0, fmt.Errorf("open model %s: %w", name, err)
	}
	defer f.Close()

	extent, verts, err := ReadExtent(f)
	if err != nil {
		return mgl64.Vec3{}, 0, fmt.Errorf("parse model %s: %w", name, err)
	}
	return extent, verts, nil
}

// ReadExtent scans the vertex records of a Wavefront OBJ stream and returns
// the half-size of their bounding box together with the vertex count.
func ReadExtent(r io.Reader) (mgl64.Vec3, int, error) {
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	n := 0

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "v" {
			continue
		}
		if len(fields) < 4 {
			return mgl64.Vec3{}, 0, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
		}
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return mgl64.Vec3{}, 0, fmt.Errorf("line %d: %w", line, err)
			}
			lo[i] = math.Min(lo[i], v)
			hi[i] = math.Max(hi[i], v)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return mgl64.Vec3{}, 0, err
	}
	if n == 0 {
		return mgl64.Vec3{}, 0, ErrNoVertices
	}
	return hi.Sub(lo).Mul(0.5), n, nil
}
