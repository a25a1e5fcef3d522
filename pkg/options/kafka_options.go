package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*KafkaOptions)(nil)

// KafkaOptions contains configuration for the Kafka bus backend.
type KafkaOptions struct {
	Brokers []string `json:"brokers" mapstructure:"brokers"`

	// GroupPrefix is combined with the session name to form a consumer group,
	// so every vehicle receives every message.
	GroupPrefix string `json:"group-prefix" mapstructure:"group-prefix"`

	BatchTimeout time.Duration `json:"batch-timeout" mapstructure:"batch-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// AutoCreateTopics lets the writer create missing topics.
	AutoCreateTopics bool `json:"auto-create-topics" mapstructure:"auto-create-topics"`
}

func NewKafkaOptions() *KafkaOptions {
	return &KafkaOptions{
		Brokers:          []string{"localhost:9092"},
		GroupPrefix:      "vfleet",
		BatchTimeout:     10 * time.Millisecond,
		WriteTimeout:     10 * time.Second,
		AutoCreateTopics: true,
	}
}

func (o *KafkaOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if len(o.Brokers) == 0 {
		errs = append(errs, errors.New("--kafka.brokers must name at least one broker"))
	}
	for _, b := range o.Brokers {
		if err := ValidateAddress(b); err != nil {
			errs = append(errs, fmt.Errorf("--kafka.brokers: %w", err))
		}
	}

	return errs
}

func (o *KafkaOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Brokers, "kafka.brokers", o.Brokers, "Kafka bootstrap brokers (host:port).")
	fs.StringVar(&o.GroupPrefix, "kafka.group-prefix", o.GroupPrefix, "Consumer group prefix; each session consumes in its own group.")
	fs.DurationVar(&o.BatchTimeout, "kafka.batch-timeout", o.BatchTimeout, "Maximum time a message waits in the writer batch.")
	fs.DurationVar(&o.WriteTimeout, "kafka.write-timeout", o.WriteTimeout, "Timeout of a single write.")
	fs.BoolVar(&o.AutoCreateTopics, "kafka.auto-create-topics", o.AutoCreateTopics, "Create missing topics on first write.")
}
