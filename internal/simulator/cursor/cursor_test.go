package cursor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

const step = 0.01 * 0.33

func mustNew(t *testing.T, r core.Route) *Cursor {
	t.Helper()
	c, err := New(r)
	require.NoError(t, err)
	return c
}

// drive advances until the leg is done and checks the progress invariants on
// every step.
func drive(t *testing.T, c *Cursor, step float64) int {
	t.Helper()
	steps := 0
	for !c.Done() {
		before := c.Progress()
		nextVertex := math.Floor(before) + 1

		_, p := c.Advance(step)
		assert.GreaterOrEqual(t, p, before, "progress decreased")
		assert.LessOrEqual(t, p, nextVertex, "progress skipped a vertex")

		steps++
		require.Less(t, steps, 100000, "leg never finished")
	}
	return steps
}

func TestNewRejectsEmptyRoute(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrEmptyRoute)
}

func TestAdvanceReachesEnd(t *testing.T) {
	routes := map[string]core.Route{
		"two points":    {{Lon: 2.0, Lat: 41.0}, {Lon: 2.1, Lat: 41.1}},
		"polyline":      {{Lon: 0, Lat: 0}, {Lon: 0.02, Lat: 0.01}, {Lon: 0.02, Lat: -0.03}, {Lon: -0.01, Lat: 0}},
		"along lat":     {{Lon: 0, Lat: 5}, {Lon: 0.05, Lat: 5}},
		"with repeat":   {{Lon: 0, Lat: 0}, {Lon: 0.01, Lat: 0.01}, {Lon: 0.01, Lat: 0.01}, {Lon: 0.02, Lat: 0}},
		"short segment": {{Lon: 0, Lat: 0}, {Lon: 0.0004, Lat: 0.0002}, {Lon: 0.01, Lat: 0.01}},
	}
	for name, r := range routes {
		t.Run(name, func(t *testing.T) {
			c := mustNew(t, r)
			steps := drive(t, c, step)

			assert.Positive(t, steps)
			assert.Equal(t, float64(len(r)-1), c.Progress())
			assert.Equal(t, r.Last(), c.Position())
			assert.Equal(t, r.Last(), PositionAt(r, float64(len(r)-1)))
		})
	}
}

func TestAdvanceStopsOnVertex(t *testing.T) {
	r := core.Route{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.005}, {Lon: 0, Lat: 1}}
	c := mustNew(t, r)

	pos, p := c.Advance(0.004)
	assert.InDelta(t, 0.8, p, 1e-9)
	assert.InDelta(t, 0.004, pos.Lat, 1e-12)

	// overshoot clamps onto vertex 1
	pos, p = c.Advance(0.004)
	assert.Equal(t, 1.0, p)
	assert.Equal(t, r[1], pos)
}

func TestAdvanceAtLastVertex(t *testing.T) {
	r := core.Route{{Lon: 1, Lat: 1}}
	c := mustNew(t, r)
	assert.True(t, c.Done())

	pos, p := c.Advance(step)
	assert.Equal(t, r[0], pos)
	assert.Zero(t, p)
}

func TestPositionAt(t *testing.T) {
	r := core.Route{{Lon: 0, Lat: 0}, {Lon: 2, Lat: 4}, {Lon: 4, Lat: 4}}
	assert.Equal(t, r[0], PositionAt(r, 0))
	assert.Equal(t, core.Coordinate{Lon: 1, Lat: 2}, PositionAt(r, 0.5))
	assert.Equal(t, core.Coordinate{Lon: 3, Lat: 4}, PositionAt(r, 1.5))
	assert.Equal(t, r[2], PositionAt(r, 2))
	assert.Equal(t, r[2], PositionAt(r, 7))
}

func TestReverse(t *testing.T) {
	r := core.Route{{Lon: 2.0, Lat: 41.0}, {Lon: 2.05, Lat: 41.02}, {Lon: 2.1, Lat: 41.1}}
	c := mustNew(t, r)
	drive(t, c, step)

	c.Reverse()
	assert.Zero(t, c.Progress())
	assert.Equal(t, r.Last(), c.Position())

	drive(t, c, step)
	assert.Equal(t, r.First(), c.Position())

	c.Reverse()
	assert.Equal(t, r, c.Route())
}

func TestTruncate(t *testing.T) {
	r := core.Route{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.01}, {Lon: 0, Lat: 0.02}, {Lon: 0, Lat: 0.03}}
	c := mustNew(t, r)

	for c.Progress() < 1.2 {
		c.Advance(step)
	}
	assert.False(t, c.PastMidpoint())
	here := c.Position()

	c.Truncate()
	got := c.Route()
	require.Len(t, got, 3)
	assert.Equal(t, r[0], got[0])
	assert.Equal(t, r[1], got[1])
	assert.Equal(t, here, got[2])
	assert.True(t, c.Done())

	c.Reverse()
	assert.Equal(t, here, c.Position())
	drive(t, c, step)
	assert.Equal(t, r.First(), c.Position())
}

func TestPastMidpoint(t *testing.T) {
	r := core.Route{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.01}, {Lon: 0, Lat: 0.02}}
	c := mustNew(t, r)
	assert.False(t, c.PastMidpoint())

	for c.Progress() <= 1 {
		c.Advance(step)
	}
	assert.True(t, c.PastMidpoint())
}
