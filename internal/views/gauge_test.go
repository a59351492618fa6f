package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSweepDegrees(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{0, 0},
		{50, 180},
		{100, 360},
		{25, 90},
		{-10, 0},
		{150, 360},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SweepDegrees(tt.score), "score %d", tt.score)
	}
}

func TestNewGauge(t *testing.T) {
	t.Run("zero draws no arc", func(t *testing.T) {
		g := NewGauge(0)
		assert.Equal(t, 0.0, g.Sweep)
		assert.Empty(t, g.ArcPath)
		assert.False(t, g.Full)
		assert.Equal(t, "0%", g.Label)
	})

	t.Run("full score is a circle", func(t *testing.T) {
		g := NewGauge(100)
		assert.Equal(t, 360.0, g.Sweep)
		assert.True(t, g.Full)
		assert.Empty(t, g.ArcPath)
	})

	t.Run("half ends at six o'clock", func(t *testing.T) {
		g := NewGauge(50)
		assert.Equal(t, 180.0, g.Sweep)
		assert.Equal(t, "M 120 30 A 90 90 0 0 1 120 210", g.ArcPath)
	})

	t.Run("quarter ends at three o'clock", func(t *testing.T) {
		g := NewGauge(25)
		assert.Equal(t, "M 120 30 A 90 90 0 0 1 210 120", g.ArcPath)
	})

	t.Run("large arc past half", func(t *testing.T) {
		g := NewGauge(75)
		assert.Equal(t, "M 120 30 A 90 90 0 1 1 30 120", g.ArcPath)
	})

	t.Run("out of range is clamped", func(t *testing.T) {
		assert.Equal(t, "100%", NewGauge(250).Label)
		assert.Equal(t, "0%", NewGauge(-5).Label)
	})
}
