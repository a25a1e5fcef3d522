package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every vfleet collector plus the Go and process collectors.
// It is served on /metrics by the operator server.
var Registry = prometheus.NewRegistry()

var (
	// VehicleStatus is 1 for the current status of a vehicle and 0 for the others.
	VehicleStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vfleet_vehicle_status",
			Help: "Current status of each vehicle (1 = active status).",
		},
		[]string{"vehicle", "status"},
	)

	VehicleBattery = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vfleet_vehicle_battery_percent",
			Help: "Battery level of each vehicle. Not clamped, may go negative.",
		},
		[]string{"vehicle"},
	)

	VehicleAutonomy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vfleet_vehicle_autonomy",
			Help: "Remaining autonomy of each vehicle.",
		},
		[]string{"vehicle"},
	)

	VehiclesHalted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfleet_vehicles_halted",
			Help: "Vehicles whose control loop stopped after a terminal anomaly.",
		},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfleet_status_transitions_total",
			Help: "Status transitions by entered status.",
		},
		[]string{"status"},
	)

	// MessagesPublished counts outbound telemetry. result: ok/failed.
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfleet_messages_published_total",
			Help: "Outbound telemetry messages by topic and result.",
		},
		[]string{"topic", "result"},
	)

	// MessagesReceived counts inbound commands.
	// result: accepted/ignored/malformed/dropped.
	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfleet_messages_received_total",
			Help: "Inbound messages by topic and outcome.",
		},
		[]string{"topic", "result"},
	)

	AnomaliesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfleet_anomalies_handled_total",
			Help: "Anomalies acted upon by kind.",
		},
		[]string{"kind"},
	)

	FeedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfleet_feed_clients",
			Help: "Connected live feed websocket clients.",
		},
	)

	// FeedDropped counts messages not delivered to a slow feed client.
	FeedDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vfleet_feed_dropped_total",
			Help: "Feed messages dropped because a client buffer was full.",
		},
	)

	LegDistance = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vfleet_leg_distance",
			Help:    "Distance travelled per completed leg, in coordinate units.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		VehicleStatus,
		VehicleBattery,
		VehicleAutonomy,
		VehiclesHalted,
		StatusTransitions,
		MessagesPublished,
		MessagesReceived,
		AnomaliesHandled,
		FeedClients,
		FeedDropped,
		LegDistance,
	)
}

// VehicleLabel formats a vehicle id as a label value.
func VehicleLabel(id int) string {
	return strconv.Itoa(id)
}

// SetStatus marks status as the active one for vehicle among all statuses.
func SetStatus(vehicle int, active string, all []string) {
	label := VehicleLabel(vehicle)
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1
		}
		VehicleStatus.WithLabelValues(label, s).Set(v)
	}
	StatusTransitions.WithLabelValues(active).Inc()
}

// SetPower records the energy state of a vehicle.
func SetPower(vehicle int, battery, autonomy float64) {
	label := VehicleLabel(vehicle)
	VehicleBattery.WithLabelValues(label).Set(battery)
	VehicleAutonomy.WithLabelValues(label).Set(autonomy)
}
