package storage

import "github.com/san-kum/pastryfall/internal/fall"

// Trace holds sampled body heights; Heights[i] belongs to Ticks[i].
type Trace struct {
	Ticks   []int
	Heights [][]float64
}

func (tr *Trace) Len() int { return len(tr.Ticks) }

// Width is the largest body count seen in any sample.
func (tr *Trace) Width() int {
	w := 0
	for _, row := range tr.Heights {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Series returns one body's heights over time, skipping samples taken before it existed.
func (tr *Trace) Series(body int) []float64 {
	out := make([]float64, 0, len(tr.Heights))
	for _, row := range tr.Heights {
		if body < len(row) {
			out = append(out, row[body])
		}
	}
	return out
}

// Mean returns the average height of all bodies per sample.
func (tr *Trace) Mean() []float64 {
	out := make([]float64, 0, len(tr.Heights))
	for _, row := range tr.Heights {
		if len(row) == 0 {
			continue
		}
		sum := 0.0
		for _, h := range row {
			sum += h
		}
		out = append(out, sum/float64(len(row)))
	}
	return out
}

// Recorder samples body heights every Every ticks. It is a fall.Observer.
type Recorder struct {
	Every int
	trace Trace
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{Every: every}
}

func (r *Recorder) OnStep(tick int, bodies []*fall.Body) {
	if tick%r.Every != 0 {
		return
	}
	r.Sample(tick, bodies)
}

func (r *Recorder) Sample(tick int, bodies []*fall.Body) {
	row := make([]float64, len(bodies))
	for i, b := range bodies {
		row[i] = b.Height()
	}
	r.trace.Ticks = append(r.trace.Ticks, tick)
	r.trace.Heights = append(r.trace.Heights, row)
}

func (r *Recorder) Trace() *Trace { return &r.trace }
