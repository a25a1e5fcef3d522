package vehicle

import (
	"context"
	"time"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/cursor"
	"github.com/autopeer-io/vfleet/internal/simulator/geometry"
)

// outcome tells the caller of a cycle step how to carry on.
type outcome int

const (
	// proceed continues the normal flow.
	proceed outcome = iota
	// aborted ends the delivery cycle; the vehicle waits at the depot.
	aborted
	// stopped ends the control loop for good.
	stopped
)

// place is where the vehicle is when it looks at a pending anomaly.
type place int

const (
	atDepot place = iota
	atDestination
	outbound
	inbound
)

// Run executes the control loop until ctx ends or a terminal anomaly halts
// the vehicle; both return nil. A non-nil error means the status machine
// rejected a transition.
func (v *Vehicle) Run(ctx context.Context) error {
	v.logger.Info("Vehicle started", "policy", v.cfg.Policy, "step", v.cfg.StepDistance())
	defer v.logger.Info("Vehicle stopped", "halted", v.halted.Load())

	for !v.halted.Load() {
		out, err := v.checkpoint(ctx, atDepot)
		if err != nil {
			return v.loopError(ctx, err)
		}
		if out == stopped {
			return nil
		}

		if route, ok := v.takeRoute(); ok {
			out, err = v.deliver(ctx, route)
			if err != nil {
				return v.loopError(ctx, err)
			}
			if out == stopped {
				return nil
			}
			continue
		}

		if err := v.sleep(ctx, v.cfg.PollInterval); err != nil {
			return nil
		}
	}
	return nil
}

// loopError hides errors caused by ctx ending mid-transition.
func (v *Vehicle) loopError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	v.logger.Error(err, "Control loop failed", "status", v.status.String())
	return err
}

// deliver runs one delivery cycle: load, drive out, unload, drive back.
func (v *Vehicle) deliver(ctx context.Context, route core.Route) (outcome, error) {
	c, err := cursor.New(route)
	if err != nil {
		v.logger.Error(err, "Discarding route")
		return proceed, nil
	}
	v.cursor = c
	v.returning = false
	v.position = c.Position()
	defer v.discardRoute()

	v.logger.Info("Delivery started", "vertices", c.Len(), "destination", route.Last())

	if err := v.fire(ctx, EventAssign); err != nil {
		return proceed, err
	}
	if err := v.sleep(ctx, v.cfg.LoadingDwell); err != nil {
		return proceed, err
	}
	if out, err := v.checkpoint(ctx, atDepot); out != proceed || err != nil {
		return out, err
	}

	if err := v.fire(ctx, EventDepart); err != nil {
		return proceed, err
	}
	if out, err := v.drive(ctx, outbound); out != proceed || err != nil {
		return out, err
	}
	if out, err := v.checkpoint(ctx, atDestination); out != proceed || err != nil {
		return out, err
	}

	if err := v.fire(ctx, EventArrive); err != nil {
		return proceed, err
	}
	if err := v.sleep(ctx, v.cfg.UnloadingDwell); err != nil {
		return proceed, err
	}
	if out, err := v.checkpoint(ctx, atDestination); out != proceed || err != nil {
		return out, err
	}

	if err := v.fire(ctx, EventUnload); err != nil {
		return proceed, err
	}
	v.turnBack()
	if out, err := v.drive(ctx, inbound); out != proceed || err != nil {
		return out, err
	}

	if err := v.fire(ctx, EventFinish); err != nil {
		return proceed, err
	}
	v.logger.Info("Delivery finished", "battery", v.power.Battery, "autonomy", v.power.Autonomy)
	return proceed, nil
}

// drive moves along the current leg until its last vertex, one step per tick.
// Under PolicyTick pending anomalies are looked at before every step.
func (v *Vehicle) drive(ctx context.Context, where place) (outcome, error) {
	travelled := 0.0
	for !v.cursor.Done() {
		if v.cfg.Policy == PolicyTick {
			if out, err := v.checkpoint(ctx, where); out != proceed || err != nil {
				return out, err
			}
		}

		prev := v.position
		pos, progress := v.cursor.Advance(v.cfg.StepDistance())
		d := geometry.Distance(prev, pos)
		travelled += d

		v.power = v.power.Consume(d)
		v.position = pos
		metrics.SetPower(v.cfg.ID, v.power.Battery, v.power.Autonomy)
		v.publishSnapshot()

		v.logger.Debug("Moved", "heading", geometry.Heading(prev, pos), "progress", progress, "battery", v.power.Battery)
		v.reporter.ReportLocation(ctx, core.Telemetry{
			VehicleID: v.cfg.ID,
			Position:  pos,
			Status:    v.status,
			Battery:   v.power.Battery,
			Autonomy:  v.power.Autonomy,
		})

		if err := v.sleep(ctx, v.cfg.TickInterval); err != nil {
			return proceed, err
		}
	}
	metrics.LegDistance.Observe(travelled)
	return proceed, nil
}

// turnBack reverses the leg so the vehicle heads for the depot.
func (v *Vehicle) turnBack() {
	v.cursor.Reverse()
	v.returning = true
	v.publishSnapshot()
}

func (v *Vehicle) discardRoute() {
	v.cursor = nil
	v.returning = false
	v.publishSnapshot()
}

// sleep waits for d on the vehicle clock. It returns ctx.Err() if ctx ends first.
func (v *Vehicle) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := v.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}
