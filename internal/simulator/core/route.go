package core

import (
	"encoding/json"
	"fmt"
)

// Coordinate is a planar point. On the wire it is the array [lon, lat].
type Coordinate struct {
	Lon float64
	Lat float64
}

// MarshalJSON encodes the coordinate as [lon, lat].
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

// UnmarshalJSON decodes [lon, lat, ...]. Extra elements such as altitude are
// ignored.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: coordinate: %v", ErrMalformedPayload, err)
	}
	if len(v) < 2 {
		return fmt.Errorf("%w: coordinate needs [lon, lat], got %d elements", ErrMalformedPayload, len(v))
	}
	c.Lon, c.Lat = v[0], v[1]
	return nil
}

// Route is the ordered list of vertices a vehicle follows. The first vertex is
// the depot.
type Route []Coordinate

// Validate returns ErrEmptyRoute for a route without vertices.
func (r Route) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRoute
	}
	return nil
}

// Clone returns an independent copy.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// Reversed returns a reversed copy.
func (r Route) Reversed() Route {
	out := make(Route, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// First returns the first vertex. The route must not be empty.
func (r Route) First() Coordinate { return r[0] }

// Last returns the last vertex. The route must not be empty.
func (r Route) Last() Coordinate { return r[len(r)-1] }

// ParseRoute decodes the JSON text carried in a route assignment:
// [[lon, lat], [lon, lat], ...].
func ParseRoute(text string) (Route, error) {
	var r Route
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("%w: route: %v", ErrMalformedPayload, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
