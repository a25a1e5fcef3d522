package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*RedisOptions)(nil)

// RedisOptions contains configuration for the Redis pub/sub bus backend.
type RedisOptions struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
}

func NewRedisOptions() *RedisOptions {
	return &RedisOptions{
		Addr: "localhost:6379",
	}
}

func (o *RedisOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errs = append(errs, fmt.Errorf("--redis.addr: %w", err))
	}
	if o.DB < 0 {
		errs = append(errs, fmt.Errorf("--redis.db must not be negative"))
	}

	return errs
}

func (o *RedisOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "redis.addr", o.Addr, "Redis server address (host:port).")
	fs.StringVar(&o.Username, "redis.username", o.Username, "Redis ACL username.")
	fs.StringVar(&o.Password, "redis.password", o.Password, "Redis password.")
	fs.IntVar(&o.DB, "redis.db", o.DB, "Redis database number.")
}
