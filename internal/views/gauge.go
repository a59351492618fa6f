package views

import (
	"fmt"
	"math"
	"strconv"
)

const (
	gaugeSize   = 240.0
	gaugeRadius = 90.0
	gaugeStroke = 25.0
)

// Gauge is the radial score chart: a full-circle track with a clockwise arc
// from twelve o'clock whose sweep is proportional to the score.
type Gauge struct {
	Score  int
	Sweep  float64
	Size   float64
	Center float64
	Radius float64
	Stroke float64
	// ArcPath is the SVG path of the foreground arc. It is empty for a zero
	// sweep; a full sweep is drawn as a circle instead (see Full).
	ArcPath string
	Full    bool
	Label   string
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// SweepDegrees maps a score to the arc sweep in degrees.
func SweepDegrees(score int) float64 {
	return float64(ClampScore(score)) / 100 * 360
}

func NewGauge(score int) Gauge {
	score = ClampScore(score)
	sweep := SweepDegrees(score)
	center := gaugeSize / 2

	g := Gauge{
		Score:  score,
		Sweep:  sweep,
		Size:   gaugeSize,
		Center: center,
		Radius: gaugeRadius,
		Stroke: gaugeStroke,
		Full:   sweep >= 360,
		Label:  strconv.Itoa(score) + "%",
	}
	if sweep > 0 && sweep < 360 {
		g.ArcPath = arcPath(center, center, gaugeRadius, sweep)
	}
	return g
}

// arcPath draws a clockwise arc starting at the top of the circle. SVG's y
// axis points down, so sweep-flag 1 is clockwise on screen.
func arcPath(cx, cy, r, sweep float64) string {
	theta := sweep * math.Pi / 180
	endX := cx + r*math.Sin(theta)
	endY := cy - r*math.Cos(theta)

	largeArc := 0
	if sweep > 180 {
		largeArc = 1
	}

	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s",
		num(cx), num(cy-r), num(r), num(r), largeArc, num(endX), num(endY))
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
