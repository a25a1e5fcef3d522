// Package routestore loads route files for the trigger sender, from the local
// filesystem or an S3-compatible bucket.
package routestore

import (
	"context"
	"fmt"
	"os"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

// Provider loads the route stored under key.
type Provider interface {
	Load(ctx context.Context, key string) (core.Route, error)
}

// File reads routes from local files; the key is the path.
type File struct{}

var _ Provider = File{}

func (File) Load(_ context.Context, key string) (core.Route, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return parse(key, data)
}

func parse(key string, data []byte) (core.Route, error) {
	route, err := core.ParseRoute(string(data))
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", key, err)
	}
	return route, nil
}
