// Package simulator runs a fleet of simulated delivery vehicles, each with
// its own bus session, next to the operator HTTP server.
package simulator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/simulator/feed"
	"github.com/autopeer-io/vfleet/internal/simulator/server"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/internal/simulator/vehicle"
	"github.com/autopeer-io/vfleet/pkg/log"
)

const closeTimeout = 5 * time.Second

// Fleet owns the vehicles of one simulator process.
type Fleet struct {
	units  []*unit
	byID   map[int]*unit
	hub    *feed.Hub
	server *server.Server
	logger log.Logger

	started atomic.Int32
}

type unit struct {
	vehicle  *vehicle.Vehicle
	session  bus.Bus
	receiver *telemetry.Receiver
}

var _ server.Fleet = (*Fleet)(nil)

// Run starts every vehicle and the operator server, and blocks until ctx
// ends or one of them fails.
func (f *Fleet) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if f.server != nil {
		g.Go(func() error {
			return f.server.Start(ctx)
		})
	}

	for _, u := range f.units {
		g.Go(func() error {
			return f.runUnit(ctx, u)
		})
	}

	f.logger.Info("Fleet starting...", "vehicles", len(f.units))
	err := g.Wait()
	f.logger.Info("Fleet stopped")
	return err
}

func (f *Fleet) runUnit(ctx context.Context, u *unit) error {
	id := u.vehicle.ID()

	if err := u.session.Start(ctx); err != nil {
		return fmt.Errorf("vehicle %d: start bus session: %w", id, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := u.session.Close(closeCtx); err != nil {
			f.logger.Error(err, "Failed to close bus session", "vehicle", id)
		}
	}()

	if err := u.receiver.Subscribe(ctx); err != nil {
		return fmt.Errorf("vehicle %d: %w", id, err)
	}
	f.started.Add(1)

	if err := u.vehicle.Run(ctx); err != nil {
		return fmt.Errorf("vehicle %d: %w", id, err)
	}

	// A halted vehicle stays subscribed and drops its input until shutdown.
	<-ctx.Done()
	return nil
}

// Ready reports whether every vehicle session is subscribed.
func (f *Fleet) Ready() bool {
	return int(f.started.Load()) == len(f.units)
}

// Snapshots returns the state of every vehicle in id order.
func (f *Fleet) Snapshots() []vehicle.Snapshot {
	snaps := make([]vehicle.Snapshot, 0, len(f.units))
	for _, u := range f.units {
		snaps = append(snaps, u.vehicle.Snapshot())
	}
	return snaps
}

// Snapshot returns the state of vehicle id.
func (f *Fleet) Snapshot(id int) (vehicle.Snapshot, bool) {
	u, ok := f.byID[id]
	if !ok {
		return vehicle.Snapshot{}, false
	}
	return u.vehicle.Snapshot(), true
}

// Feed returns the live feed hub.
func (f *Fleet) Feed() *feed.Hub {
	return f.hub
}
