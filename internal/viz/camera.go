package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits a target on a horizontal circle and projects world points
// onto a canvas with a perspective transform.
type Camera struct {
	Target mgl64.Vec3
	Radius float64
	Height float64
	Yaw    float64
	FOV    float64
	Near   float64
	Far    float64
	Zoom   float64
}

// NewCamera starts at (20, 30, 10) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Radius: math.Hypot(20, 10),
		Height: 30,
		Yaw:    math.Atan2(10, 20),
		FOV:    mgl64.DegToRad(75),
		Near:   0.1,
		Far:    1000,
		Zoom:   1,
	}
}

func (c *Camera) Orbit(a float64) { c.Yaw += a }
func (c *Camera) ZoomIn()         { c.Zoom = math.Min(5, c.Zoom*1.2) }
func (c *Camera) ZoomOut()        { c.Zoom = math.Max(0.2, c.Zoom/1.2) }

func (c *Camera) Eye() mgl64.Vec3 {
	offset := mgl64.Vec3{c.Radius * math.Cos(c.Yaw), c.Height, c.Radius * math.Sin(c.Yaw)}
	return c.Target.Add(offset.Mul(1 / c.Zoom))
}

func (c *Camera) matrix(w, h int) mgl64.Mat4 {
	proj := mgl64.Perspective(c.FOV, float64(w)/float64(h), c.Near, c.Far)
	view := mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// Project maps p to sub-pixel coordinates on a w x h surface.
// ok is false for points behind the camera or outside the frustum.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, ok bool) {
	return projectWith(c.matrix(w, h), p, w, h)
}

func projectWith(m mgl64.Mat4, p mgl64.Vec3, w, h int) (int, int, bool) {
	clip := m.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, false
	}
	x := int((ndc.X() + 1) / 2 * float64(w))
	y := int((1 - ndc.Y()) / 2 * float64(h))
	return x, y, math.Abs(ndc.X()) <= 1 && math.Abs(ndc.Y()) <= 1
}

// DrawSegment projects both ends and draws the line when either end is on screen.
func DrawSegment(cv *Canvas, m mgl64.Mat4, a, b mgl64.Vec3) {
	w, h := cv.Pixels()
	x0, y0, ok0 := projectWith(m, a, w, h)
	x1, y1, ok1 := projectWith(m, b, w, h)
	if !ok0 && !ok1 {
		return
	}
	cv.DrawLine(x0, y0, x1, y1)
}
