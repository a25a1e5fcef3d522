package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
)

// Location is the position block of a location update.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationMessage is published on CAR/UPDATELOCATION after every tick.
type LocationMessage struct {
	VehicleID int      `json:"id_car"`
	Location  Location `json:"location_act"`
	StatusNum int      `json:"status_num"`
	Status    string   `json:"status"`
	Battery   float64  `json:"battery"`
	Autonomy  float64  `json:"autonomy"`
}

// StatusMessage is published on CAR/UPDATESTATUS on every status change.
type StatusMessage struct {
	VehicleID int    `json:"id_car"`
	StatusNum int    `json:"status_num"`
	Status    string `json:"status"`
}

// AnomalyReport is published on CAR/REPORTANOMALIA when an anomaly is acted upon.
type AnomalyReport struct {
	VehicleID   int    `json:"id_car"`
	Result      string `json:"result"`
	Description string `json:"description"`
}

// StartRouteMessage is received on CAR/STARTROUTE. Route holds the
// JSON-encoded coordinate array as a string. Pointer fields detect missing keys.
type StartRouteMessage struct {
	VehicleID *int    `json:"id_car"`
	Order     *int    `json:"order"`
	Route     *string `json:"route"`
}

// AnomalyMessage is received on CAR/ANOMALIA.
type AnomalyMessage struct {
	VehicleID *int    `json:"id_car"`
	Kind      *string `json:"hehe"`
}

// NewLocationMessage builds the wire form of a telemetry snapshot.
func NewLocationMessage(t core.Telemetry) LocationMessage {
	return LocationMessage{
		VehicleID: t.VehicleID,
		Location:  Location{Latitude: t.Position.Lat, Longitude: t.Position.Lon},
		StatusNum: int(t.Status),
		Status:    t.Status.String(),
		Battery:   t.Battery,
		Autonomy:  t.Autonomy,
	}
}

// NewStatusMessage builds a status update.
func NewStatusMessage(vehicleID int, s core.Status) StatusMessage {
	return StatusMessage{VehicleID: vehicleID, StatusNum: int(s), Status: s.String()}
}

// NewAnomalyReport builds an anomaly report.
func NewAnomalyReport(vehicleID int, description string) AnomalyReport {
	return AnomalyReport{VehicleID: vehicleID, Result: "ok", Description: description}
}

// DecodeStartRoute decodes the envelope of a route assignment. The embedded
// route text is left to the caller, so that messages for other vehicles are
// not parsed further.
func DecodeStartRoute(payload []byte) (vehicleID, order int, route string, err error) {
	var m StartRouteMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	if m.VehicleID == nil || m.Order == nil || m.Route == nil {
		return 0, 0, "", fmt.Errorf("%w: id_car, order and route are required", core.ErrMalformedPayload)
	}
	return *m.VehicleID, *m.Order, *m.Route, nil
}

// DecodeAnomaly decodes an anomaly injection.
func DecodeAnomaly(payload []byte) (core.AnomalyRequest, error) {
	var m AnomalyMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return core.AnomalyRequest{}, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	if m.VehicleID == nil || m.Kind == nil {
		return core.AnomalyRequest{}, fmt.Errorf("%w: id_car and hehe are required", core.ErrMalformedPayload)
	}
	return core.AnomalyRequest{VehicleID: *m.VehicleID, Kind: core.AnomalyKind(*m.Kind)}, nil
}

// EncodeStartRoute builds a route assignment payload.
func EncodeStartRoute(a core.RouteAssignment) ([]byte, error) {
	route, err := json.Marshal(a.Route)
	if err != nil {
		return nil, err
	}
	text := string(route)
	return json.Marshal(StartRouteMessage{VehicleID: &a.VehicleID, Order: &a.Order, Route: &text})
}

// EncodeAnomaly builds an anomaly injection payload.
func EncodeAnomaly(r core.AnomalyRequest) ([]byte, error) {
	kind := string(r.Kind)
	return json.Marshal(AnomalyMessage{VehicleID: &r.VehicleID, Kind: &kind})
}
