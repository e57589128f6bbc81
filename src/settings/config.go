package settings

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TTL          time.Duration `envconfig:"SETTINGS_TTL" default:"60s"`
	PollInterval time.Duration `envconfig:"SETTINGS_POLL_INTERVAL" default:"100ms"`
	PollTimeout  time.Duration `envconfig:"SETTINGS_POLL_TIMEOUT" default:"5s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

func DefaultConfig() Config {
	return Config{
		TTL:          60 * time.Second,
		PollInterval: 100 * time.Millisecond,
		PollTimeout:  5 * time.Second,
	}
}
