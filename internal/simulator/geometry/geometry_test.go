package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

func TestBearing(t *testing.T) {
	origin := core.Coordinate{}
	assert.InDelta(t, 0, Bearing(origin, core.Coordinate{Lat: 1}), 1e-12)
	assert.InDelta(t, math.Pi/2, Bearing(origin, core.Coordinate{Lon: 1}), 1e-12)
	assert.InDelta(t, math.Pi, Bearing(origin, core.Coordinate{Lat: -1}), 1e-12)
	assert.InDelta(t, -math.Pi/2, Bearing(origin, core.Coordinate{Lon: -1}), 1e-12)
	assert.Zero(t, Bearing(origin, origin))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		angle float64
		want  Direction
	}{
		{math.Pi / 2, Forward},
		{-math.Pi / 2, Backward},
		{math.Pi, TurnLeft},
		{-math.Pi, TurnLeft},
		{3 * math.Pi / 4, TurnLeft},
		{-3 * math.Pi / 4, TurnLeft},
		{0, TurnRight},
		{math.Pi / 4, TurnRight},
		{-math.Pi / 4, TurnRight},
		{0.1, TurnRight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.angle), "angle %v", tt.angle)
	}
}

func TestHeading(t *testing.T) {
	p := core.Coordinate{Lon: 2, Lat: 41}
	assert.Equal(t, Forward, Heading(p, core.Coordinate{Lon: 3, Lat: 41}))
	assert.Equal(t, Backward, Heading(p, core.Coordinate{Lon: 1, Lat: 41}))
	assert.Equal(t, TurnLeft, Heading(p, core.Coordinate{Lon: 2, Lat: 40}))
	assert.Equal(t, TurnRight, Heading(p, core.Coordinate{Lon: 2, Lat: 42}))
	// zero-length segment
	assert.Equal(t, TurnRight, Heading(p, p))
}

func TestDistanceAndLerp(t *testing.T) {
	a := core.Coordinate{Lon: 0, Lat: 0}
	b := core.Coordinate{Lon: 3, Lat: 4}
	assert.InDelta(t, 5, Distance(a, b), 1e-12)

	mid := Lerp(a, b, 0.5)
	assert.InDelta(t, 1.5, mid.Lon, 1e-12)
	assert.InDelta(t, 2, mid.Lat, 1e-12)
	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))

	assert.InDelta(t, 10, Length(core.Route{a, b, a}), 1e-12)
	assert.Zero(t, Length(core.Route{a}))
}
