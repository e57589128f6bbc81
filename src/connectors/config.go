package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIURL         string        `envconfig:"BINARY_API_URL" default:"http://localhost:3000/api/exchange/binary"`
	WSURL          string        `envconfig:"BINARY_WS_URL" default:"ws://localhost:3000/api/exchange/binary/ws"`
	APIToken       string        `envconfig:"BINARY_API_TOKEN"`
	SettingsPath   string        `envconfig:"SETTINGS_PATH" default:"/settings"`
	RequestTimeout time.Duration `envconfig:"BINARY_REQUEST_TIMEOUT" default:"15s"`

	PricePollEnabled  bool          `envconfig:"PRICE_POLL_ENABLED" default:"false"`
	PricePollEndpoint string        `envconfig:"PRICE_POLL_ENDPOINT" default:"https://api.binance.com"`
	PricePollInterval time.Duration `envconfig:"PRICE_POLL_INTERVAL" default:"2s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
