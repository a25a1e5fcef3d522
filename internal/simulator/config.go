package simulator

import (
	"fmt"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/simulator/feed"
	"github.com/autopeer-io/vfleet/internal/simulator/server"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/internal/simulator/vehicle"
	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// Config is the completed configuration of a simulator process.
type Config struct {
	BusOptions   *options.BusOptions
	MqttOptions  *options.MqttOptions
	KafkaOptions *options.KafkaOptions
	RedisOptions *options.RedisOptions
	HttpOptions  *options.HttpOptions
	SimOptions   *options.SimOptions

	// Broker backs the memory bus backend. Nil creates a private one.
	Broker *bus.MemoryBroker
	Logger log.Logger
}

// NewFleet wires the vehicles, their bus sessions and the operator server.
// Nothing connects until Run.
func (cfg *Config) NewFleet() (*Fleet, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Std()
	}

	factory := bus.NewFactory(&bus.Config{
		Bus:   cfg.BusOptions,
		Mqtt:  cfg.MqttOptions,
		Kafka: cfg.KafkaOptions,
		Redis: cfg.RedisOptions,
	}, cfg.Broker, logger.WithName("bus"))

	topics := telemetry.NewTopics(cfg.BusOptions.Namespace)
	hub := feed.NewHub(logger.WithName("feed"), 0)

	f := &Fleet{
		hub:    hub,
		logger: logger,
		byID:   make(map[int]*unit, cfg.SimOptions.Vehicles),
	}

	for i := range cfg.SimOptions.Vehicles {
		id := cfg.SimOptions.FirstVehicleID + i
		vlog := logger.WithName("vehicle")

		session, err := factory.NewSession(fmt.Sprintf("vehicle-%d", id))
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", id, err)
		}

		reporter := telemetry.NewReporter(session, topics, vlog.WithValues("vehicle", id), hub)
		v := vehicle.New(vehicle.ConfigFromOptions(id, cfg.SimOptions), reporter, vehicle.WithLogger(vlog))
		u := &unit{
			vehicle:  v,
			session:  session,
			receiver: telemetry.NewReceiver(session, topics, v, vlog.WithValues("vehicle", id)),
		}
		f.units = append(f.units, u)
		f.byID[id] = u
	}

	if cfg.HttpOptions.Enabled() {
		f.server = server.New(cfg.HttpOptions, f, hub, logger.WithName("http"))
	}

	return f, nil
}
