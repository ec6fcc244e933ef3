// Package scene builds the dessert scene around the simulation: the plate,
// the pastry catalog, the renderable nodes and the asynchronous model loader.
package scene
