package vehicle

import (
	"context"
	"fmt"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

// Description is the text of the anomaly report published for kind. It is
// empty for unforced kinds, which are never reported.
func Description(kind core.AnomalyKind) string {
	switch kind.Normalize() {
	case core.AnomalyBattery10:
		return "WARNING: low battery level, 10%. Actions: returning to depot..."
	case core.AnomalyBattery5:
		return "CRITICAL: low battery level, 5%. Actions: seeking shelter immediately..."
	case core.AnomalyBreakdown, core.AnomalyUncommunicative:
		return fmt.Sprintf("CRITICAL: the vehicle suffered a technical problem. Error code: %s. "+
			"Actions: a technician must travel to the vehicle's last known location.", kind)
	default:
		return ""
	}
}

// checkpoint acts on the pending anomaly, if any.
func (v *Vehicle) checkpoint(ctx context.Context, where place) (outcome, error) {
	kind, ok := v.takeAnomaly()
	if !ok {
		return proceed, nil
	}
	return v.handleAnomaly(ctx, kind, where)
}

func (v *Vehicle) handleAnomaly(ctx context.Context, kind core.AnomalyKind, where place) (outcome, error) {
	logger := v.logger.WithValues("anomaly", string(kind), "status", v.status.String())
	if v.cfg.Policy == PolicyIgnore {
		logger.Info("Anomaly acknowledged, ignored by policy")
		return proceed, nil
	}

	label := "unforced"
	if kind.IsForced() {
		label = string(kind.Normalize())
	}
	metrics.AnomaliesHandled.WithLabelValues(label).Inc()
	v.latched = ""

	switch {
	case kind.IsTerminal():
		logger.Warn("Terminal anomaly")
		return v.halt(ctx, kind)
	case kind.IsLowBattery():
		logger.Warn("Low battery anomaly", "level", kind.BatteryLevel())
		return v.lowBattery(ctx, kind, where)
	}

	if v.cfg.Unforced == UnforcedContinue {
		v.latched = kind
		logger.Info("Anomaly latched, continuing")
	} else {
		logger.Info("Anomaly acknowledged")
	}
	v.publishSnapshot()
	return proceed, nil
}

// halt reports the anomaly, enters Alert and stops accepting input.
func (v *Vehicle) halt(ctx context.Context, kind core.AnomalyKind) (outcome, error) {
	v.reporter.ReportAnomaly(ctx, v.cfg.ID, Description(kind))
	if err := v.alert(ctx); err != nil {
		return proceed, err
	}
	v.halted.Store(true)
	v.pendingRoute.Store(nil)
	metrics.VehiclesHalted.Inc()
	v.publishSnapshot()
	v.logger.Warn("Vehicle halted", "position", v.position)
	return stopped, nil
}

// lowBattery forces the battery down, brings the vehicle back to the depot
// and recharges it. The current route is discarded.
func (v *Vehicle) lowBattery(ctx context.Context, kind core.AnomalyKind, where place) (outcome, error) {
	v.power = v.power.Force(kind.BatteryLevel())
	metrics.SetPower(v.cfg.ID, v.power.Battery, v.power.Autonomy)
	v.reporter.ReportAnomaly(ctx, v.cfg.ID, Description(kind))
	if err := v.alert(ctx); err != nil {
		return proceed, err
	}

	if where == outbound {
		if v.cursor.PastMidpoint() {
			v.logger.Info("Past the midpoint, finishing the leg first", "progress", v.cursor.Progress())
			if out, err := v.drive(ctx, outbound); out != proceed || err != nil {
				return out, err
			}
		} else {
			v.cursor.Truncate()
		}
	}
	if where == outbound || where == atDestination {
		v.turnBack()
	}
	if where != atDepot {
		if err := v.fire(ctx, EventRecall); err != nil {
			return proceed, err
		}
		if out, err := v.drive(ctx, inbound); out != proceed || err != nil {
			return out, err
		}
	}

	return v.recover(ctx)
}

// recover holds the vehicle in Repairing for the recovery dwell and
// recharges it.
func (v *Vehicle) recover(ctx context.Context) (outcome, error) {
	if err := v.fire(ctx, EventRepair); err != nil {
		return proceed, err
	}
	if err := v.sleep(ctx, v.cfg.RecoveryDwell); err != nil {
		return proceed, err
	}
	v.power = v.power.Recharge()
	metrics.SetPower(v.cfg.ID, v.power.Battery, v.power.Autonomy)
	if err := v.fire(ctx, EventRecover); err != nil {
		return proceed, err
	}
	v.logger.Info("Vehicle recovered", "battery", v.power.Battery)
	return aborted, nil
}

// alert enters Alert unless the vehicle already is there.
func (v *Vehicle) alert(ctx context.Context) error {
	if v.status == core.StatusAlert {
		return nil
	}
	return v.fire(ctx, EventAlert)
}
