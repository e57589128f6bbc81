package trader

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// EventInterval is how often a headless session logs its state.
	EventInterval time.Duration `envconfig:"TRADER_EVENT_INTERVAL" default:"5s"`
	Symbol        string        `envconfig:"TRADER_SYMBOL"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
