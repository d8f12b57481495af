package config

import "github.com/caarlos0/env/v11"

// LogConfig shapes the hub's zerolog output. With no overrides the hub logs
// JSON at info to stderr; LOG_FILE switches the sink to a size-capped file so
// a long-lived table process cannot fill the disk.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Console renders human-readable lines instead of JSON. Local runs only.
	Console     bool   `env:"LOG_CONSOLE" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	FileMaxMB   int    `env:"LOG_FILE_MAX_MB" envDefault:"32"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
