// Package viz is the terminal front end: a Bubble Tea program that steps the
// falling-pastry simulator once per frame and draws the plate and pastries
// as Braille wireframes through a perspective camera.
package viz
