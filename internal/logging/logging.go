// Package logging constructs the application's structured logger
// (SPEC_FULL.md §4.10): zap, writing human-readable lines to stderr and
// to a size-rotated file.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	LogDir     string
	Level      string // "debug", "info", "warn", "error"
	MaxSizeMB  int
	MaxBackups int
}

// New builds the process-wide logger. It never returns an error for a
// broken rotation target in isolation from the rest of the app; callers
// that fail to open the log file still get a working stderr-only
// logger rather than being blocked from starting.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	cleanup := func() {}

	if opts.LogDir != "" {
		path := filepath.Join(opts.LogDir, "hdrsnip.log")
		rw, err := newRotatingWriter(path, opts.MaxSizeMB, opts.MaxBackups)
		if err == nil {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rw), level))
			cleanup = func() { rw.Close() }
		}
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, cleanup, nil
}
