// Package vehicle runs the control loop of one simulated delivery vehicle.
//
// Inbound commands never touch the control loop directly. AssignRoute and
// InjectAnomaly drop the latest value into a single slot; the loop picks it up
// at its next decision point. A newer value overwrites an unread one.
package vehicle

import (
	"sync"
	"sync/atomic"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/cursor"
	"github.com/autopeer-io/vfleet/internal/simulator/power"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/pkg/log"
)

// Snapshot is the externally visible state of a vehicle.
type Snapshot struct {
	ID           int             `json:"id"`
	Status       string          `json:"status"`
	StatusCode   int             `json:"status_code"`
	Position     core.Coordinate `json:"position"`
	Battery      float64         `json:"battery"`
	Autonomy     float64         `json:"autonomy"`
	Progress     float64         `json:"progress"`
	LegLength    int             `json:"leg_length"`
	Returning    bool            `json:"returning"`
	Halted       bool            `json:"halted"`
	Anomaly      string          `json:"anomaly,omitempty"`
	RoutePending bool            `json:"route_pending"`
}

// Vehicle is one simulated vehicle.
type Vehicle struct {
	cfg      Config
	reporter core.Reporter
	clock    clock.Clock
	logger   log.Logger

	pendingRoute   atomic.Pointer[core.Route]
	pendingAnomaly atomic.Pointer[core.AnomalyKind]
	halted         atomic.Bool

	// Owned by the control loop.
	machine   *fsm.FSM
	status    core.Status
	power     power.State
	cursor    *cursor.Cursor
	position  core.Coordinate
	returning bool
	latched   core.AnomalyKind

	mu   sync.RWMutex
	snap Snapshot
}

var _ telemetry.Target = (*Vehicle)(nil)

// Option configures a Vehicle.
type Option func(*Vehicle)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(v *Vehicle) { v.clock = c }
}

// WithLogger sets the logger. Records carry the vehicle id.
func WithLogger(l log.Logger) Option {
	return func(v *Vehicle) { v.logger = l }
}

// New creates a waiting vehicle with a full battery.
func New(cfg Config, reporter core.Reporter, opts ...Option) *Vehicle {
	v := &Vehicle{
		cfg:      cfg,
		reporter: reporter,
		clock:    clock.RealClock{},
		logger:   log.Std(),
		status:   core.StatusWaiting,
		power:    power.NewState(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithValues("vehicle", cfg.ID)
	v.machine = newStatusMachine(v.enterStatus)

	metrics.SetPower(cfg.ID, v.power.Battery, v.power.Autonomy)
	v.publishSnapshot()
	return v
}

// ID returns the vehicle id.
func (v *Vehicle) ID() int { return v.cfg.ID }

// AssignRoute hands a route over to the control loop. It returns false once
// the vehicle is halted.
func (v *Vehicle) AssignRoute(route core.Route) bool {
	if v.halted.Load() {
		return false
	}
	route = route.Clone()
	v.pendingRoute.Store(&route)
	return true
}

// InjectAnomaly hands an anomaly over to the control loop. It returns false
// once the vehicle is halted.
func (v *Vehicle) InjectAnomaly(kind core.AnomalyKind) bool {
	if v.halted.Load() {
		return false
	}
	v.pendingAnomaly.Store(&kind)
	return true
}

// Halted reports whether a terminal anomaly stopped the vehicle.
func (v *Vehicle) Halted() bool { return v.halted.Load() }

// Snapshot returns the state published after the last tick or transition.
func (v *Vehicle) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.snap
	s.Halted = v.halted.Load()
	s.RoutePending = v.pendingRoute.Load() != nil
	return s
}

func (v *Vehicle) takeRoute() (core.Route, bool) {
	r := v.pendingRoute.Swap(nil)
	if r == nil {
		return nil, false
	}
	return *r, true
}

func (v *Vehicle) takeAnomaly() (core.AnomalyKind, bool) {
	k := v.pendingAnomaly.Swap(nil)
	if k == nil {
		return "", false
	}
	return *k, true
}

// publishSnapshot copies the loop-owned state for readers on other goroutines.
func (v *Vehicle) publishSnapshot() {
	s := Snapshot{
		ID:         v.cfg.ID,
		Status:     v.status.String(),
		StatusCode: int(v.status),
		Position:   v.position,
		Battery:    v.power.Battery,
		Autonomy:   v.power.Autonomy,
		Returning:  v.returning,
		Anomaly:    string(v.latched),
	}
	if v.cursor != nil {
		s.Progress = v.cursor.Progress()
		s.LegLength = v.cursor.Len()
	}

	v.mu.Lock()
	v.snap = s
	v.mu.Unlock()
}
