// Package logging wires the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cardhub/internal/config"
)

var output io.Writer = os.Stdout

// Init configures the global logger. When cfg.File is set, log lines go to a
// size-capped file instead of stdout; a broken file sink falls back to stdout
// rather than killing the process.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	output = os.Stdout
	if cfg.File != "" {
		if w, err := newCappedFile(cfg.File, cfg.FileMaxMB); err == nil {
			output = w
		}
	}
	if cfg.Console {
		output = zerolog.ConsoleWriter{Out: output}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the active log sink for adapters (the httplog slog handler).
func Writer() io.Writer {
	return output
}
