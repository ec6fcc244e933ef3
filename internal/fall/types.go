package fall

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle is the transform of a renderable owned by the scene graph.
type Handle interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() mgl64.Vec3
	SetRotation(r mgl64.Vec3)
}

// Body is one falling object. Its position and rotation live on the handle.
type Body struct {
	Kind     string
	Handle   Handle
	Velocity float64
	Bounces  int
}

func (b *Body) Position() mgl64.Vec3 { return b.Handle.Position() }
func (b *Body) Height() float64      { return b.Handle.Position().Y() }

// Spawn describes where bodies appear on creation and reset.
type Spawn struct {
	SpreadX  float64    `yaml:"spread_x"`
	SpreadZ  float64    `yaml:"spread_z"`
	MinY     float64    `yaml:"min_y"`
	BandY    float64    `yaml:"band_y"`
	Rotation mgl64.Vec3 `yaml:"rotation,flow"`
}

type Params struct {
	Gravity       float64 `yaml:"gravity"`
	FloorY        float64 `yaml:"floor_y"`
	BodyRadius    float64 `yaml:"body_radius"`
	BounceFactor  float64 `yaml:"bounce_factor"`
	RestThreshold float64 `yaml:"rest_threshold"`
	SpinStep      float64 `yaml:"spin_step"`
	ResetRotation bool    `yaml:"reset_rotation"`
	Spawn         Spawn   `yaml:"spawn"`
}

func DefaultParams() Params {
	return Params{
		Gravity:       -0.001,
		FloorY:        -0.5,
		BodyRadius:    1.0,
		BounceFactor:  0.7,
		RestThreshold: 0.01,
		SpinStep:      0.01,
		ResetRotation: true,
		Spawn: Spawn{
			SpreadX:  20,
			SpreadZ:  10,
			MinY:     10,
			BandY:    20,
			Rotation: mgl64.Vec3{-math.Pi / 2, 0, 0},
		},
	}
}

// Boundary is the lowest height a body centre can reach.
func (p Params) Boundary() float64 { return p.FloorY + p.BodyRadius }

func (p Params) Validate() error {
	switch {
	case p.Gravity >= 0:
		return fmt.Errorf("gravity must be negative, got %g: %w", p.Gravity, ErrParameterBounds)
	case p.BounceFactor <= 0 || p.BounceFactor >= 1:
		return fmt.Errorf("bounce factor must be in (0,1), got %g: %w", p.BounceFactor, ErrParameterBounds)
	case p.RestThreshold <= 0:
		return fmt.Errorf("rest threshold must be positive, got %g: %w", p.RestThreshold, ErrParameterBounds)
	case p.BodyRadius < 0:
		return fmt.Errorf("body radius must not be negative, got %g: %w", p.BodyRadius, ErrParameterBounds)
	case p.SpinStep < 0:
		return fmt.Errorf("spin step must not be negative, got %g: %w", p.SpinStep, ErrParameterBounds)
	case p.Spawn.SpreadX < 0 || p.Spawn.SpreadZ < 0 || p.Spawn.BandY < 0:
		return fmt.Errorf("spawn spread and band must not be negative: %w", ErrParameterBounds)
	case p.Spawn.MinY < p.Boundary():
		return fmt.Errorf("spawn height %g is below the floor boundary %g: %w", p.Spawn.MinY, p.Boundary(), ErrParameterBounds)
	}
	return nil
}

// Observer is notified after every completed Step.
type Observer interface {
	OnStep(tick int, bodies []*Body)
}

// ResetObserver is optionally implemented by observers that care about resets.
type ResetObserver interface {
	OnReset(tick int, bodies []*Body)
}
