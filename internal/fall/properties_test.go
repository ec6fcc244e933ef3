package fall_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pastryfall/internal/fall"
)

type node struct {
	pos, rot mgl64.Vec3
}

func (n *node) Position() mgl64.Vec3     { return n.pos }
func (n *node) SetPosition(p mgl64.Vec3) { n.pos = p }
func (n *node) Rotation() mgl64.Vec3     { return n.rot }
func (n *node) SetRotation(r mgl64.Vec3) { n.rot = r }

var _ = Describe("Simulator", func() {
	var (
		params fall.Params
		sim    *fall.Simulator
	)

	BeforeEach(func() {
		params = fall.DefaultParams()
		sim = fall.New(params, 2024)
	})

	Context("with a single body dropped from y=10", func() {
		var body *fall.Body

		BeforeEach(func() {
			body = &fall.Body{Kind: "cookie", Handle: &node{pos: mgl64.Vec3{0, 10, 0}}}
			sim.Add(body)
		})

		It("falls monotonically until it first reaches the floor", func() {
			prev := body.Height()
			for body.Bounces == 0 {
				sim.Step()
				Expect(body.Height()).To(BeNumerically("<", prev))
				prev = body.Height()
			}
			Expect(body.Height()).To(Equal(params.Boundary()))
		})

		It("bounces with strictly decreasing peaks and settles exactly on the floor", func() {
			var peaks []float64
			peak := math.Inf(-1)
			bounces := 0

			for i := 0; i < 200000; i++ {
				sim.Step()
				Expect(body.Height()).To(BeNumerically(">=", params.Boundary()))

				if body.Bounces != bounces {
					if bounces > 0 && peak > params.Boundary() {
						peaks = append(peaks, peak)
					}
					bounces = body.Bounces
					peak = math.Inf(-1)
				}
				peak = math.Max(peak, body.Height())

				if sim.IsResting(body) {
					break
				}
			}

			Expect(body.Velocity).To(BeZero())
			Expect(body.Height()).To(Equal(0.5))
			Expect(len(peaks)).To(BeNumerically(">", 1))
			for i := 1; i < len(peaks); i++ {
				Expect(peaks[i]).To(BeNumerically("<", peaks[i-1]))
			}
		})

		It("scales every rebound by the bounce factor until it comes to rest", func() {
			var rebounds []float64
			for i := 0; i < 200000 && !sim.IsResting(body); i++ {
				before, bounces := body.Velocity, body.Bounces
				sim.Step()
				if body.Bounces == bounces {
					continue
				}
				impact := math.Abs(before + params.Gravity)
				if body.Velocity == 0 {
					Expect(impact * params.BounceFactor).To(BeNumerically("<", params.RestThreshold))
					continue
				}
				Expect(body.Velocity).To(BeNumerically("~", impact*params.BounceFactor, 1e-12))
				rebounds = append(rebounds, body.Velocity)
			}

			Expect(sim.IsResting(body)).To(BeTrue())
			for i := 1; i < len(rebounds); i++ {
				Expect(rebounds[i]).To(BeNumerically("<", rebounds[i-1]))
			}
		})

		It("stays at rest once velocity reaches zero", func() {
			for !sim.IsResting(body) {
				sim.Step()
			}
			for i := 0; i < 500; i++ {
				sim.Step()
				Expect(body.Velocity).To(BeZero())
				Expect(body.Height()).To(Equal(params.Boundary()))
			}
		})
	})

	Context("with a freshly spawned batch", func() {
		BeforeEach(func() {
			for i := 0; i < 25; i++ {
				_, err := sim.Spawn("cake", &node{})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("keeps the body count across resets", func() {
			for i := 0; i < 3000; i++ {
				sim.Step()
			}
			sim.Reset()
			Expect(sim.Bodies()).To(HaveLen(25))
			for _, b := range sim.Bodies() {
				Expect(b.Velocity).To(BeZero())
				Expect(b.Height()).To(BeNumerically(">=", params.Spawn.MinY))
			}
		})

		It("eventually brings every body to rest", func() {
			for i := 0; i < 100000 && sim.Resting() < sim.Len(); i++ {
				sim.Step()
			}
			Expect(sim.Resting()).To(Equal(sim.Len()))
		})
	})

	It("tolerates an empty collection", func() {
		Expect(sim.Step).NotTo(Panic())
		Expect(sim.Len()).To(BeZero())
		Expect(sim.Tick()).To(BeZero())
	})
})
