// Package geometry computes bearings and distances between route vertices
// and classifies the heading of a segment.
package geometry

import (
	"math"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

// Direction is the coarse heading of a segment.
type Direction string

const (
	Forward   Direction = "forward"
	Backward  Direction = "backward"
	TurnLeft  Direction = "turn-left"
	TurnRight Direction = "turn-right"
)

// Bearing returns the angle in radians of the vector p1->p2 in the
// (latitude, longitude) plane: atan2(dLon, dLat). Heading north gives 0,
// east gives pi/2. A zero-length segment yields 0.
func Bearing(p1, p2 core.Coordinate) float64 {
	return math.Atan2(p2.Lon-p1.Lon, p2.Lat-p1.Lat)
}

// Classify buckets an angle in [-pi, pi]:
//
//	(pi/4, 3pi/4)          forward
//	(-3pi/4, -pi/4)        backward
//	>= 3pi/4 or <= -3pi/4  turn-left
//	otherwise              turn-right
func Classify(angle float64) Direction {
	switch {
	case angle > math.Pi/4 && angle < 3*math.Pi/4:
		return Forward
	case angle > -3*math.Pi/4 && angle < -math.Pi/4:
		return Backward
	case angle >= 3*math.Pi/4 || angle <= -3*math.Pi/4:
		return TurnLeft
	default:
		return TurnRight
	}
}

// Heading classifies the segment p1->p2.
func Heading(p1, p2 core.Coordinate) Direction {
	return Classify(Bearing(p1, p2))
}

// Distance is the planar euclidean distance, in the same units as the
// coordinates.
func Distance(p1, p2 core.Coordinate) float64 {
	return math.Hypot(p2.Lon-p1.Lon, p2.Lat-p1.Lat)
}

// Lerp interpolates between a and b; t=0 yields a and t=1 yields b.
func Lerp(a, b core.Coordinate, t float64) core.Coordinate {
	return core.Coordinate{
		Lon: a.Lon + t*(b.Lon-a.Lon),
		Lat: a.Lat + t*(b.Lat-a.Lat),
	}
}

// Length is the total polyline length of a route.
func Length(r core.Route) float64 {
	var total float64
	for i := 1; i < len(r); i++ {
		total += Distance(r[i-1], r[i])
	}
	return total
}
