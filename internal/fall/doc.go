// Package fall provides the falling-body simulation behind the pastry scene.
//
// The package owns a growable collection of bodies, each bound to a visual
// handle owned by the scene graph:
//
//   - [Body]: one falling object (handle + vertical velocity)
//   - [Handle]: transform capability the simulator writes to but never owns
//   - [Params]: gravity, floor, restitution and spawn constants
//   - [Simulator]: advances every body by one tick and applies the floor bounce
//
// # Example
//
//	s := fall.New(fall.DefaultParams(), 42)
//	s.Spawn("cookie", node)
//	for {
//	    s.Step()
//	}
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. The host loop that calls Step must
// also be the one that appends newly loaded bodies.
package fall
