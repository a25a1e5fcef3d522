package options

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

// Bus backends.
const (
	BusMQTT   = "mqtt"
	BusKafka  = "kafka"
	BusRedis  = "redis"
	BusMemory = "memory"
)

var busBackends = []string{BusMQTT, BusKafka, BusRedis, BusMemory}

var _ IOptions = (*BusOptions)(nil)

// BusOptions selects the message bus backend and the topic namespace.
type BusOptions struct {
	Backend string `json:"backend" mapstructure:"backend"`

	// Namespace prefixes every topic: {Namespace}/CAR/...
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

func NewBusOptions() *BusOptions {
	return &BusOptions{
		Backend:   BusMQTT,
		Namespace: "PTIN2023",
	}
}

func (o *BusOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if !slices.Contains(busBackends, o.Backend) {
		errs = append(errs, fmt.Errorf("--bus.backend must be one of %v, got %q", busBackends, o.Backend))
	}
	if o.Namespace == "" {
		errs = append(errs, fmt.Errorf("--bus.namespace must not be empty"))
	}

	return errs
}

func (o *BusOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Backend, "bus.backend", o.Backend, fmt.Sprintf("Message bus backend, one of %v.", busBackends))
	fs.StringVar(&o.Namespace, "bus.namespace", o.Namespace, "Topic namespace shared by the fleet and its control plane.")
}
