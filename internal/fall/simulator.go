package fall

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type Simulator struct {
	params    Params
	rng       *rand.Rand
	bodies    []*Body
	observers []Observer
	tick      int
}

func New(params Params, seed int64) *Simulator {
	return &Simulator{
		params:    params,
		rng:       rand.New(rand.NewSource(seed)),
		bodies:    make([]*Body, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() Params  { return s.params }
func (s *Simulator) Bodies() []*Body { return s.bodies }
func (s *Simulator) Len() int        { return len(s.bodies) }
func (s *Simulator) Tick() int       { return s.tick }

// Add registers bodies as they are. Bodies without a handle are skipped.
func (s *Simulator) Add(bodies ...*Body) {
	for _, b := range bodies {
		if b == nil || b.Handle == nil {
			continue
		}
		s.bodies = append(s.bodies, b)
	}
}

// Spawn places h at a random spawn point and registers it as a new body.
func (s *Simulator) Spawn(kind string, h Handle) (*Body, error) {
	if h == nil {
		return nil, ErrNilHandle
	}
	h.SetPosition(s.spawnPoint())
	h.SetRotation(s.params.Spawn.Rotation)
	b := &Body{Kind: kind, Handle: h}
	s.bodies = append(s.bodies, b)
	return b, nil
}

// Step advances every body by one tick. With no bodies it is a no-op.
func (s *Simulator) Step() {
	if len(s.bodies) == 0 {
		return
	}

	p := s.params
	floor := p.Boundary()

	for _, b := range s.bodies {
		pos := b.Handle.Position()

		b.Velocity += p.Gravity
		pos[1] += b.Velocity

		if pos[1] <= floor {
			pos[1] = floor
			b.Velocity = -b.Velocity * p.BounceFactor
			b.Bounces++

			// rest snap applies on contact only
			if math.Abs(b.Velocity) < p.RestThreshold {
				b.Velocity = 0
			}
		}
		b.Handle.SetPosition(pos)

		if math.Abs(b.Velocity) > p.RestThreshold {
			rot := b.Handle.Rotation()
			rot[0] += p.SpinStep
			rot[1] += p.SpinStep
			b.Handle.SetRotation(rot)
		}
	}

	s.tick++
	for _, o := range s.observers {
		o.OnStep(s.tick, s.bodies)
	}
}

// Reset sends every body back to a fresh spawn point at rest.
func (s *Simulator) Reset() {
	for _, b := range s.bodies {
		b.Handle.SetPosition(s.spawnPoint())
		b.Velocity = 0
		b.Bounces = 0
		if s.params.ResetRotation {
			b.Handle.SetRotation(s.params.Spawn.Rotation)
		}
	}
	for _, o := range s.observers {
		if r, ok := o.(ResetObserver); ok {
			r.OnReset(s.tick, s.bodies)
		}
	}
}

// Resting counts bodies sitting on the floor with zero velocity.
func (s *Simulator) Resting() int {
	n := 0
	for _, b := range s.bodies {
		if s.IsResting(b) {
			n++
		}
	}
	return n
}

func (s *Simulator) IsResting(b *Body) bool {
	return b.Velocity == 0 && b.Height() <= s.params.Boundary()
}

func (s *Simulator) spawnPoint() mgl64.Vec3 {
	sp := s.params.Spawn
	return mgl64.Vec3{
		randSpread(s.rng, sp.SpreadX),
		sp.MinY + s.rng.Float64()*sp.BandY,
		randSpread(s.rng, sp.SpreadZ),
	}
}

// randSpread is uniform in [-r/2, r/2).
func randSpread(rng *rand.Rand, r float64) float64 {
	return r * (0.5 - rng.Float64())
}
