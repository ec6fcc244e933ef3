// Package export renders scenes and recorded runs to SVG.
package export
