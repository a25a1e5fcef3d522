package core

// AnomalyKind names an injected fault. Kinds other than the constants below
// are "unforced": the vehicle acknowledges them without a forced reaction.
type AnomalyKind string

const (
	AnomalyBattery10       AnomalyKind = "set_battery_10"
	AnomalyBattery5        AnomalyKind = "set_battery_5"
	AnomalyBreakdown       AnomalyKind = "breakdown"
	AnomalyUncommunicative AnomalyKind = "uncommunicative"

	// anomalyUncommunicativeAlias is the spelling used by the legacy trigger sender.
	anomalyUncommunicativeAlias AnomalyKind = "unncomunicate"
)

// Normalize maps aliases onto their canonical kind.
func (k AnomalyKind) Normalize() AnomalyKind {
	if k == anomalyUncommunicativeAlias {
		return AnomalyUncommunicative
	}
	return k
}

// IsLowBattery reports whether k forces the battery down.
func (k AnomalyKind) IsLowBattery() bool {
	k = k.Normalize()
	return k == AnomalyBattery10 || k == AnomalyBattery5
}

// IsTerminal reports whether k halts the vehicle for good.
func (k AnomalyKind) IsTerminal() bool {
	k = k.Normalize()
	return k == AnomalyBreakdown || k == AnomalyUncommunicative
}

// IsForced reports whether k triggers a forced reaction.
func (k AnomalyKind) IsForced() bool {
	return k.IsLowBattery() || k.IsTerminal()
}

// BatteryLevel is the level a low battery anomaly forces. It is 0 for other kinds.
func (k AnomalyKind) BatteryLevel() float64 {
	switch k.Normalize() {
	case AnomalyBattery10:
		return 10
	case AnomalyBattery5:
		return 5
	default:
		return 0
	}
}

// AnomalyRequest is an inbound anomaly injection.
type AnomalyRequest struct {
	VehicleID int
	Kind      AnomalyKind
}

// RouteAssignment is an inbound route for a vehicle. Only Order == 1 starts a
// delivery.
type RouteAssignment struct {
	VehicleID int
	Order     int
	Route     Route
}
