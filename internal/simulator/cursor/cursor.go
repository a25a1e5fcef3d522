// Package cursor tracks fractional progress along a route polyline.
//
// Progress p lies in [0, len(route)-1]. floor(p) selects the current segment
// and p-floor(p) is the interpolation weight inside it. Advancing never
// decreases progress and never moves past the next vertex in one call.
package cursor

import (
	"math"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/geometry"
)

// Epsilon floors segment lengths used as divisors. Segments shorter than
// Epsilon are treated as degenerate.
const Epsilon = 0.001

// Cursor is a position along one leg of a route. It is not safe for
// concurrent use; the vehicle control loop owns it.
type Cursor struct {
	route    core.Route
	progress float64
}

// New returns a cursor at the start of route. The route is copied.
func New(route core.Route) (*Cursor, error) {
	if err := route.Validate(); err != nil {
		return nil, err
	}
	return &Cursor{route: route.Clone()}, nil
}

// Route returns a copy of the current leg.
func (c *Cursor) Route() core.Route { return c.route.Clone() }

// Progress returns the current progress.
func (c *Cursor) Progress() float64 { return c.progress }

// Len returns the number of vertices of the leg.
func (c *Cursor) Len() int { return len(c.route) }

func (c *Cursor) lastIndex() int { return len(c.route) - 1 }

// Done reports whether the leg is finished: progress >= len-1.
func (c *Cursor) Done() bool {
	return c.progress >= float64(c.lastIndex())
}

// PastMidpoint reports whether progress lies beyond half of the leg.
func (c *Cursor) PastMidpoint() bool {
	return c.progress > float64(c.lastIndex())/2
}

// Position returns the interpolated position at the current progress.
func (c *Cursor) Position() core.Coordinate {
	return PositionAt(c.route, c.progress)
}

// PositionAt interpolates between route[floor(p)] and
// route[min(floor(p)+1, len-1)]. Progress at or beyond the last index yields
// the last vertex; there is no extrapolation.
func PositionAt(route core.Route, progress float64) core.Coordinate {
	last := len(route) - 1
	if progress >= float64(last) {
		return route[last]
	}
	if progress <= 0 {
		return route[0]
	}
	base := int(math.Floor(progress))
	next := min(base+1, last)
	return geometry.Lerp(route[base], route[next], progress-float64(base))
}

// Advance moves step units along the current segment and returns the new
// position and progress. At the last vertex it pins progress to len-1. A
// degenerate segment (shorter than Epsilon) is skipped by snapping to its end
// vertex. A move that would overshoot the next vertex stops exactly on it.
func (c *Cursor) Advance(step float64) (core.Coordinate, float64) {
	last := c.lastIndex()
	base := min(int(math.Floor(c.progress)), last)
	next := min(base+1, last)

	if base == next {
		c.progress = float64(last)
		return c.route[last], c.progress
	}

	a, b := c.route[base], c.route[next]
	dLat, dLon := b.Lat-a.Lat, b.Lon-a.Lon
	length := math.Hypot(dLat, dLon)
	if length < Epsilon {
		c.progress = float64(next)
		return b, c.progress
	}

	cur := c.Position()
	if step <= 0 {
		return cur, c.progress
	}

	modulo := math.Max(length, Epsilon)
	pos := core.Coordinate{
		Lon: cur.Lon + dLon/modulo*step,
		Lat: cur.Lat + dLat/modulo*step,
	}

	// Inverse interpolation on the latitude axis, or longitude when the
	// segment runs along a parallel.
	var t float64
	if dLat != 0 {
		t = (pos.Lat - a.Lat) / dLat
	} else {
		t = (pos.Lon - a.Lon) / dLon
	}
	progress := float64(base) + t

	if progress > float64(next) {
		pos = b
		progress = float64(next)
	}
	if progress < c.progress {
		progress = c.progress
	}

	c.progress = progress
	return pos, progress
}

// Reverse flips the leg in place and resets progress to 0, so the same
// polyline serves the way back.
func (c *Cursor) Reverse() {
	c.route = c.route.Reversed()
	c.progress = 0
}

// Truncate drops the part of the leg not yet travelled: the leg becomes
// route[0..floor(progress)] followed by the current position, and progress
// points at its end. Reverse afterwards to head back from here.
func (c *Cursor) Truncate() {
	if c.Done() {
		return
	}
	pos := c.Position()
	base := int(math.Floor(c.progress))

	prefix := c.route[:base+1].Clone()
	if pos != prefix.Last() {
		prefix = append(prefix, pos)
	}
	c.route = prefix
	c.progress = float64(c.lastIndex())
}
