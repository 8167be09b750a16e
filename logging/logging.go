// Package logging builds the zap logger shared by the client.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and destination.
type Options struct {
	Level   string // debug, info, warn, error
	File    string // empty logs to stderr
	Verbose bool   // forces debug
}

// New returns a production JSON logger. The TUI owns stdout, so interactive
// sessions log to a file; one-shot commands log to stderr.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}
