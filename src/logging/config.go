package logging

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Level      string `envconfig:"LOG_LEVEL" default:"debug"`
	Format     string `envconfig:"LOG_FORMAT" default:"text"` // text or json
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"7"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
