// Package power models battery drain and remaining autonomy.
package power

const (
	// FullBattery is the battery level of a fresh or recharged vehicle.
	FullBattery = 100.0
	// InitialAutonomy is the autonomy of a fresh vehicle.
	InitialAutonomy = 2000.0

	// batteryDrainPerUnit converts distance into battery percent: d / 0.10.
	batteryDrainPerUnit = 0.10
	// autonomyFactor scales the autonomy update.
	autonomyFactor = 20.0
)

// State is the energy state of a vehicle. Values are not clamped; they may
// go negative on long routes.
type State struct {
	Battery  float64
	Autonomy float64
}

// NewState returns the state of a fresh vehicle.
func NewState() State {
	return State{Battery: FullBattery, Autonomy: InitialAutonomy}
}

// Consume applies one movement step of the given distance:
//
//	battery'  = battery - distance/0.10
//	autonomy' = autonomy - (distance/100) * battery' * 20
//
// The autonomy update uses the already updated battery.
func Consume(battery, autonomy, distance float64) (float64, float64) {
	battery -= distance / batteryDrainPerUnit
	autonomy -= (distance / 100) * battery * autonomyFactor
	return battery, autonomy
}

// Consume returns the state after travelling distance.
func (s State) Consume(distance float64) State {
	s.Battery, s.Autonomy = Consume(s.Battery, s.Autonomy, distance)
	return s
}

// Recharge restores a full battery. Autonomy is left as is.
func (s State) Recharge() State {
	s.Battery = FullBattery
	return s
}

// Force sets the battery to level, as a low battery anomaly does.
func (s State) Force(level float64) State {
	s.Battery = level
	return s
}
