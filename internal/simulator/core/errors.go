package core

import "errors"

var (
	// ErrEmptyRoute is returned for a route without vertices.
	ErrEmptyRoute = errors.New("route has no vertices")

	// ErrMalformedPayload marks inbound messages that cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
)
