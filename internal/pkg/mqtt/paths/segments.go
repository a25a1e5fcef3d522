package paths

// Topic segments of the fleet protocol. Full topics are {namespace}/{segment};
// the namespace is configurable and defaults to "PTIN2023".

// Downstream: control plane -> vehicle
const (
	// StartRoute assigns a route to a vehicle.
	// Payload: {"id_car": 5, "order": 1, "route": "[[lon, lat], ...]"}
	StartRoute = "CAR/STARTROUTE"

	// Anomaly injects a fault into a vehicle.
	// Payload: {"id_car": 5, "hehe": "breakdown"}
	Anomaly = "CAR/ANOMALIA"
)

// Upstream: vehicle -> control plane
const (
	// UpdateLocation reports position, status, battery and autonomy after every tick.
	UpdateLocation = "CAR/UPDATELOCATION"

	// UpdateStatus reports a status transition.
	UpdateStatus = "CAR/UPDATESTATUS"

	// ReportAnomaly reports an acted-upon anomaly.
	ReportAnomaly = "CAR/REPORTANOMALIA"
)
