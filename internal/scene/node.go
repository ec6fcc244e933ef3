package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Node is a renderable in the scene graph. It satisfies fall.Handle.
type Node struct {
	Name     string
	position mgl64.Vec3
	rotation mgl64.Vec3
	Scale    mgl64.Vec3
	// Extent is the half-size of the model's bounding box in model units.
	Extent mgl64.Vec3
}

func NewNode(name string, scale float64, extent mgl64.Vec3) *Node {
	return &Node{
		Name:   name,
		Scale:  mgl64.Vec3{scale, scale, scale},
		Extent: extent,
	}
}

func (n *Node) Position() mgl64.Vec3     { return n.position }
func (n *Node) SetPosition(p mgl64.Vec3) { n.position = p }
func (n *Node) Rotation() mgl64.Vec3     { return n.rotation }
func (n *Node) SetRotation(r mgl64.Vec3) { n.rotation = r }

// Clone copies the node; the clone shares nothing mutable with the original.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

// HalfSize is the world-space half extent after scaling.
func (n *Node) HalfSize() mgl64.Vec3 {
	return mgl64.Vec3{
		n.Extent[0] * n.Scale[0],
		n.Extent[1] * n.Scale[1],
		n.Extent[2] * n.Scale[2],
	}
}

// Corners returns the eight world-space corners of the node's rotated box.
func (n *Node) Corners() [8]mgl64.Vec3 {
	h := n.HalfSize()
	rot := mgl64.Rotate3DZ(n.rotation[2]).Mul3(mgl64.Rotate3DY(n.rotation[1])).Mul3(mgl64.Rotate3DX(n.rotation[0]))
	var out [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		local := mgl64.Vec3{h[0], h[1], h[2]}
		if i&1 != 0 {
			local[0] = -local[0]
		}
		if i&2 != 0 {
			local[1] = -local[1]
		}
		if i&4 != 0 {
			local[2] = -local[2]
		}
		out[i] = rot.Mul3x1(local).Add(n.position)
	}
	return out
}

// Plate is the static dish the pastries land on.
func Plate() *Node {
	n := NewNode("plate", 0.5, mgl64.Vec3{8, 0.5, 8})
	n.SetPosition(mgl64.Vec3{0, -0.5, 0})
	n.SetRotation(mgl64.Vec3{math.Pi / 1000, 0, 0})
	return n
}

// BoxEdges indexes Corners into the twelve edges of a box.
var BoxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}
