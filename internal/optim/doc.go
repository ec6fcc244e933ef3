// Package optim tunes physics parameters by running a grid of headless
// experiments and keeping the point that minimises a chosen metric.
package optim
