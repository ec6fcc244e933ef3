package metrics

import (
	"math"

	"github.com/san-kum/pastryfall/internal/fall"
)

type Metric interface {
	Name() string
	Observe(tick int, bodies []*fall.Body)
	Value() float64
	Reset()
}

// Set feeds a group of metrics from the simulator's step notifications.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Default is the metric set recorded with every run.
func Default(p fall.Params) *Set {
	return NewSet(
		NewBounceCount(),
		NewSettleTick(p.Boundary()),
		NewPeakHeight(),
		NewRestingFraction(p.Boundary()),
		NewMeanSpeed(),
	)
}

func (s *Set) OnStep(tick int, bodies []*fall.Body) {
	for _, m := range s.metrics {
		m.Observe(tick, bodies)
	}
}

func (s *Set) OnReset(tick int, bodies []*fall.Body) {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func resting(b *fall.Body, floor float64) bool {
	return b.Velocity == 0 && b.Height() <= floor
}

// BounceCount is the number of floor contacts since the last reset.
type BounceCount struct {
	total int
}

func NewBounceCount() *BounceCount { return &BounceCount{} }

func (c *BounceCount) Name() string { return "bounces" }

func (c *BounceCount) Observe(tick int, bodies []*fall.Body) {
	c.total = 0
	for _, b := range bodies {
		c.total += b.Bounces
	}
}

func (c *BounceCount) Value() float64 { return float64(c.total) }
func (c *BounceCount) Reset()         { c.total = 0 }

// SettleTick records the tick at which every body came to rest, -1 while any
// body is moving. A body that starts moving again (a late batch, a reset)
// clears it, so the value is the most recent settle.
type SettleTick struct {
	floor   float64
	settled int
}

func NewSettleTick(floor float64) *SettleTick {
	return &SettleTick{floor: floor, settled: -1}
}

func (s *SettleTick) Name() string { return "settle_tick" }

func (s *SettleTick) Observe(tick int, bodies []*fall.Body) {
	if len(bodies) == 0 {
		return
	}
	for _, b := range bodies {
		if !resting(b, s.floor) {
			s.settled = -1
			return
		}
	}
	if s.settled < 0 {
		s.settled = tick
	}
}

func (s *SettleTick) Value() float64 { return float64(s.settled) }
func (s *SettleTick) Reset()         { s.settled = -1 }

type PeakHeight struct {
	peak    float64
	samples int
}

func NewPeakHeight() *PeakHeight { return &PeakHeight{} }

func (p *PeakHeight) Name() string { return "peak_height" }

func (p *PeakHeight) Observe(tick int, bodies []*fall.Body) {
	for _, b := range bodies {
		if p.samples == 0 || b.Height() > p.peak {
			p.peak = b.Height()
		}
		p.samples++
	}
}

func (p *PeakHeight) Value() float64 { return p.peak }

func (p *PeakHeight) Reset() {
	p.peak = 0
	p.samples = 0
}

type RestingFraction struct {
	floor    float64
	fraction float64
}

func NewRestingFraction(floor float64) *RestingFraction {
	return &RestingFraction{floor: floor}
}

func (r *RestingFraction) Name() string { return "resting_fraction" }

func (r *RestingFraction) Observe(tick int, bodies []*fall.Body) {
	if len(bodies) == 0 {
		r.fraction = 0
		return
	}
	n := 0
	for _, b := range bodies {
		if resting(b, r.floor) {
			n++
		}
	}
	r.fraction = float64(n) / float64(len(bodies))
}

func (r *RestingFraction) Value() float64 { return r.fraction }
func (r *RestingFraction) Reset()         { r.fraction = 0 }

// MeanSpeed is the average |velocity| across bodies at the latest step.
type MeanSpeed struct {
	mean float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(tick int, bodies []*fall.Body) {
	if len(bodies) == 0 {
		m.mean = 0
		return
	}
	sum := 0.0
	for _, b := range bodies {
		sum += math.Abs(b.Velocity)
	}
	m.mean = sum / float64(len(bodies))
}

func (m *MeanSpeed) Value() float64 { return m.mean }
func (m *MeanSpeed) Reset()         { m.mean = 0 }
