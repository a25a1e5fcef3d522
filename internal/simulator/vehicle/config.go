package vehicle

import (
	"time"

	"github.com/autopeer-io/vfleet/pkg/options"
)

// Policy selects when pending anomalies are acted upon.
type Policy string

const (
	// PolicyIgnore acknowledges anomalies in the log and drops them.
	PolicyIgnore Policy = options.AnomalyPolicyIgnore
	// PolicyCycle acts on anomalies at the decision points of a delivery
	// cycle: while idle, after loading, on arrival and after unloading.
	PolicyCycle Policy = options.AnomalyPolicyCycle
	// PolicyTick also acts on anomalies between movement ticks, so a low
	// battery can cut a leg short.
	PolicyTick Policy = options.AnomalyPolicyTick
)

// UnforcedAction selects what an anomaly of unknown kind does.
type UnforcedAction string

const (
	// UnforcedAcknowledge logs the anomaly and clears it.
	UnforcedAcknowledge UnforcedAction = options.UnforcedAcknowledge
	// UnforcedContinue latches the anomaly and continues the normal flow.
	// The latch is replaced by the next anomaly.
	UnforcedContinue UnforcedAction = options.UnforcedContinue
)

// Config holds the per-vehicle simulation parameters.
type Config struct {
	ID int

	// Step distance per tick is Speed * StepDelta.
	Speed     float64
	StepDelta float64

	TickInterval   time.Duration
	PollInterval   time.Duration
	LoadingDwell   time.Duration
	UnloadingDwell time.Duration
	RecoveryDwell  time.Duration

	Policy   Policy
	Unforced UnforcedAction
}

// ConfigFromOptions builds the configuration of vehicle id.
func ConfigFromOptions(id int, o *options.SimOptions) Config {
	return Config{
		ID:             id,
		Speed:          o.Speed,
		StepDelta:      o.StepDelta,
		TickInterval:   o.TickInterval,
		PollInterval:   o.PollInterval,
		LoadingDwell:   o.LoadingDwell,
		UnloadingDwell: o.UnloadingDwell,
		RecoveryDwell:  o.RecoveryDwell,
		Policy:         Policy(o.AnomalyPolicy),
		Unforced:       UnforcedAction(o.UnforcedAction),
	}
}

// StepDistance is the distance covered per tick.
func (c Config) StepDistance() float64 {
	return c.Speed * c.StepDelta
}
