package core

import "context"

// Telemetry is a point-in-time snapshot of a vehicle, published after every tick.
type Telemetry struct {
	VehicleID int
	Position  Coordinate
	Status    Status
	Battery   float64
	Autonomy  float64
}

// Reporter publishes vehicle events. Implementations are fire-and-forget:
// delivery failures never reach the caller.
type Reporter interface {
	ReportLocation(ctx context.Context, t Telemetry)
	ReportStatus(ctx context.Context, vehicleID int, status Status)
	ReportAnomaly(ctx context.Context, vehicleID int, description string)
}
