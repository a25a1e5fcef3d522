package options

import (
	"fmt"
	"os"
	"strconv"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/vfleet/internal/simulator"
	"github.com/autopeer-io/vfleet/pkg/app"
	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// Environment variables understood by the first fleet deployments. They only
// apply to options still at their default value.
const (
	EnvMqttAddress = "MQTT_ADDRESS"
	EnvMqttPort    = "MQTT_PORT"
	EnvNumCars     = "NUM_CARS"
	EnvCarSpeed    = "CAR_SPEED"

	defaultMqttPort = 1883
)

type SimulatorOptions struct {
	BusOptions   *options.BusOptions   `json:"bus" mapstructure:"bus"`
	MqttOptions  *options.MqttOptions  `json:"mqtt" mapstructure:"mqtt"`
	KafkaOptions *options.KafkaOptions `json:"kafka" mapstructure:"kafka"`
	RedisOptions *options.RedisOptions `json:"redis" mapstructure:"redis"`
	HttpOptions  *options.HttpOptions  `json:"http" mapstructure:"http"`
	SimOptions   *options.SimOptions   `json:"sim" mapstructure:"sim"`
	Log          *log.Options          `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*SimulatorOptions)(nil)

func NewSimulatorOptions() *SimulatorOptions {
	return &SimulatorOptions{
		BusOptions:   options.NewBusOptions(),
		MqttOptions:  options.NewMqttOptions(),
		KafkaOptions: options.NewKafkaOptions(),
		RedisOptions: options.NewRedisOptions(),
		HttpOptions:  options.NewHttpOptions(),
		SimOptions:   options.NewSimOptions(),
		Log:          log.NewOptions(),
	}
}

func (o *SimulatorOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.SimOptions.AddFlags(fss.FlagSet("sim"))
	o.BusOptions.AddFlags(fss.FlagSet("bus"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.KafkaOptions.AddFlags(fss.FlagSet("kafka"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

// Complete applies the legacy environment variables.
func (o *SimulatorOptions) Complete() error {
	defaults := NewSimulatorOptions()

	if host := os.Getenv(EnvMqttAddress); host != "" && o.MqttOptions.Broker == defaults.MqttOptions.Broker {
		port := defaultMqttPort
		if v := os.Getenv(EnvMqttPort); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", EnvMqttPort, err)
			}
			port = p
		}
		o.MqttOptions.SetAddress(host, port)
	}

	if v := os.Getenv(EnvNumCars); v != "" && o.SimOptions.Vehicles == defaults.SimOptions.Vehicles {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNumCars, err)
		}
		o.SimOptions.Vehicles = n
	}

	if v := os.Getenv(EnvCarSpeed); v != "" && o.SimOptions.Speed == defaults.SimOptions.Speed {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCarSpeed, err)
		}
		o.SimOptions.Speed = speed
	}

	return nil
}

func (o *SimulatorOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.BusOptions.Validate()...)
	switch o.BusOptions.Backend {
	case options.BusMQTT:
		errs = append(errs, o.MqttOptions.Validate()...)
	case options.BusKafka:
		errs = append(errs, o.KafkaOptions.Validate()...)
	case options.BusRedis:
		errs = append(errs, o.RedisOptions.Validate()...)
	}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.SimOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *SimulatorOptions) Config() (*simulator.Config, error) {
	return &simulator.Config{
		BusOptions:   o.BusOptions,
		MqttOptions:  o.MqttOptions,
		KafkaOptions: o.KafkaOptions,
		RedisOptions: o.RedisOptions,
		HttpOptions:  o.HttpOptions,
		SimOptions:   o.SimOptions,
		Logger:       log.Std(),
	}, nil
}
