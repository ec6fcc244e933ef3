package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/pastryfall/internal/storage"
	"github.com/san-kum/pastryfall/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#1a1014"/>
<g fill="#ff79c6">
`, width, height, width, height))

	dotRadius := scale * 0.4
	pw, ph := canvas.Pixels()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var palette = []string{"#ff79c6", "#f1fa8c", "#8be9fd", "#50fa7b", "#ffb86c", "#bd93f9"}

// HeightsToSVG plots every body's height against the tick, with the mean
// drawn on top in white.
func HeightsToSVG(tr *storage.Trace, width, height int) string {
	if tr == nil || tr.Len() < 2 {
		return ""
	}

	minX, maxX := float64(tr.Ticks[0]), float64(tr.Ticks[tr.Len()-1])
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, row := range tr.Heights {
		for _, h := range row {
			minY = math.Min(minY, h)
			maxY = math.Max(maxY, h)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	rangeY *= 1.1

	// Bodies only ever join, so a short series covers the latest ticks.
	path := func(ys []float64) string {
		offset := tr.Len() - len(ys)
		var p strings.Builder
		for i, v := range ys {
			x := (float64(tr.Ticks[i+offset]) - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if i == 0 {
				p.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				p.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		return p.String()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#1a1014"/>
`, width, height, width, height))

	for b := 0; b < tr.Width(); b++ {
		sb.WriteString(fmt.Sprintf("<path fill=\"none\" stroke=\"%s\" stroke-opacity=\"0.5\" stroke-width=\"1\" d=\"%s\"/>\n",
			palette[b%len(palette)], path(tr.Series(b))))
	}
	sb.WriteString(fmt.Sprintf("<path fill=\"none\" stroke=\"#ffffff\" stroke-width=\"2\" d=\"%s\"/>\n", path(tr.Mean())))
	sb.WriteString("</svg>")
	return sb.String()
}
