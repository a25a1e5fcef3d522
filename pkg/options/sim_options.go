package options

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
)

// Anomaly policies.
const (
	AnomalyPolicyIgnore = "ignore"
	AnomalyPolicyCycle  = "cycle"
	AnomalyPolicyTick   = "tick"
)

// Unforced anomaly actions.
const (
	UnforcedAcknowledge = "acknowledge"
	UnforcedContinue    = "continue"
)

var (
	anomalyPolicies = []string{AnomalyPolicyIgnore, AnomalyPolicyCycle, AnomalyPolicyTick}
	unforcedActions = []string{UnforcedAcknowledge, UnforcedContinue}
)

var _ IOptions = (*SimOptions)(nil)

// SimOptions configures the simulated fleet.
type SimOptions struct {
	// Vehicles is the number of vehicles to run.
	Vehicles int `json:"vehicles" mapstructure:"vehicles"`
	// FirstVehicleID is the id of the first vehicle; the rest are numbered consecutively.
	FirstVehicleID int `json:"first-vehicle-id" mapstructure:"first-vehicle-id"`

	// Speed in distance units per second. Step distance = Speed * StepDelta.
	Speed     float64 `json:"speed" mapstructure:"speed"`
	StepDelta float64 `json:"step-delta" mapstructure:"step-delta"`

	TickInterval   time.Duration `json:"tick-interval" mapstructure:"tick-interval"`
	PollInterval   time.Duration `json:"poll-interval" mapstructure:"poll-interval"`
	LoadingDwell   time.Duration `json:"loading-dwell" mapstructure:"loading-dwell"`
	UnloadingDwell time.Duration `json:"unloading-dwell" mapstructure:"unloading-dwell"`
	RecoveryDwell  time.Duration `json:"recovery-dwell" mapstructure:"recovery-dwell"`

	AnomalyPolicy  string `json:"anomaly-policy" mapstructure:"anomaly-policy"`
	UnforcedAction string `json:"unforced-action" mapstructure:"unforced-action"`
}

func NewSimOptions() *SimOptions {
	return &SimOptions{
		Vehicles:       1,
		FirstVehicleID: 1,
		Speed:          0.01,
		StepDelta:      0.33,
		TickInterval:   time.Second,
		PollInterval:   250 * time.Millisecond,
		LoadingDwell:   10 * time.Second,
		UnloadingDwell: 5 * time.Second,
		RecoveryDwell:  5 * time.Second,
		AnomalyPolicy:  AnomalyPolicyTick,
		UnforcedAction: UnforcedAcknowledge,
	}
}

func (o *SimOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.Vehicles < 1 {
		errs = append(errs, fmt.Errorf("--sim.vehicles must be at least 1, got %d", o.Vehicles))
	}
	if o.Speed <= 0 || o.StepDelta <= 0 {
		errs = append(errs, fmt.Errorf("--sim.speed and --sim.step-delta must be positive"))
	}
	if o.TickInterval <= 0 || o.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("--sim.tick-interval and --sim.poll-interval must be positive"))
	}
	if o.LoadingDwell < 0 || o.UnloadingDwell < 0 || o.RecoveryDwell < 0 {
		errs = append(errs, fmt.Errorf("dwell durations must not be negative"))
	}
	if !slices.Contains(anomalyPolicies, o.AnomalyPolicy) {
		errs = append(errs, fmt.Errorf("--sim.anomaly-policy must be one of %v, got %q", anomalyPolicies, o.AnomalyPolicy))
	}
	if !slices.Contains(unforcedActions, o.UnforcedAction) {
		errs = append(errs, fmt.Errorf("--sim.unforced-action must be one of %v, got %q", unforcedActions, o.UnforcedAction))
	}

	return errs
}

func (o *SimOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.Vehicles, "sim.vehicles", o.Vehicles, "Number of simulated vehicles.")
	fs.IntVar(&o.FirstVehicleID, "sim.first-vehicle-id", o.FirstVehicleID, "Id of the first vehicle; the others are numbered consecutively.")
	fs.Float64Var(&o.Speed, "sim.speed", o.Speed, "Vehicle speed in distance units per second.")
	fs.Float64Var(&o.StepDelta, "sim.step-delta", o.StepDelta, "Simulated seconds advanced per tick.")
	fs.DurationVar(&o.TickInterval, "sim.tick-interval", o.TickInterval, "Wall-clock time between movement ticks.")
	fs.DurationVar(&o.PollInterval, "sim.poll-interval", o.PollInterval, "How often an idle vehicle checks for a new route.")
	fs.DurationVar(&o.LoadingDwell, "sim.loading-dwell", o.LoadingDwell, "Time spent loading before departure.")
	fs.DurationVar(&o.UnloadingDwell, "sim.unloading-dwell", o.UnloadingDwell, "Time spent unloading at the destination.")
	fs.DurationVar(&o.RecoveryDwell, "sim.recovery-dwell", o.RecoveryDwell, "Time spent repairing after a low battery anomaly.")
	fs.StringVar(&o.AnomalyPolicy, "sim.anomaly-policy", o.AnomalyPolicy, fmt.Sprintf("When anomalies are acted on, one of %v.", anomalyPolicies))
	fs.StringVar(&o.UnforcedAction, "sim.unforced-action", o.UnforcedAction, fmt.Sprintf("Handling of unrecognized anomalies, one of %v.", unforcedActions))
}
