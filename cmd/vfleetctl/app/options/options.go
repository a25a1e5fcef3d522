package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/routestore"
	"github.com/autopeer-io/vfleet/pkg/app"
	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// CtlOptions configures the trigger sender.
type CtlOptions struct {
	BusOptions   *options.BusOptions   `json:"bus" mapstructure:"bus"`
	MqttOptions  *options.MqttOptions  `json:"mqtt" mapstructure:"mqtt"`
	KafkaOptions *options.KafkaOptions `json:"kafka" mapstructure:"kafka"`
	RedisOptions *options.RedisOptions `json:"redis" mapstructure:"redis"`
	S3Options    *options.S3Options    `json:"s3" mapstructure:"s3"`
	Log          *log.Options          `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*CtlOptions)(nil)

func NewCtlOptions() *CtlOptions {
	o := &CtlOptions{
		BusOptions:   options.NewBusOptions(),
		MqttOptions:  options.NewMqttOptions(),
		KafkaOptions: options.NewKafkaOptions(),
		RedisOptions: options.NewRedisOptions(),
		S3Options:    options.NewS3Options(),
		Log:          log.NewOptions(),
	}
	o.MqttOptions.ClientID = "vfleetctl"
	o.Log.Level = "warn"
	return o
}

func (o *CtlOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.BusOptions.AddFlags(fss.FlagSet("bus"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.KafkaOptions.AddFlags(fss.FlagSet("kafka"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.S3Options.AddFlags(fss.FlagSet("s3"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *CtlOptions) Complete() error {
	return nil
}

func (o *CtlOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.BusOptions.Validate()...)
	switch o.BusOptions.Backend {
	case options.BusMQTT:
		errs = append(errs, o.MqttOptions.Validate()...)
	case options.BusKafka:
		errs = append(errs, o.KafkaOptions.Validate()...)
	case options.BusRedis:
		errs = append(errs, o.RedisOptions.Validate()...)
	case options.BusMemory:
		errs = append(errs, fmt.Errorf("--bus.backend %q only works inside one process", options.BusMemory))
	}
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

// Session opens the bus session used to send one message.
func (o *CtlOptions) Session() (bus.Bus, error) {
	factory := bus.NewFactory(&bus.Config{
		Bus:   o.BusOptions,
		Mqtt:  o.MqttOptions,
		Kafka: o.KafkaOptions,
		Redis: o.RedisOptions,
	}, nil, log.WithName("bus"))
	return factory.NewSession("vfleetctl")
}

// Store returns the route store for S3 keys.
func (o *CtlOptions) Store() (*routestore.MinIO, error) {
	if errs := o.S3Options.Validate(); len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}
	return routestore.NewMinIO(o.S3Options)
}
