// Package logging builds the process zap logger.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level and encoding.
type Options struct {
	Level   string // zap level name; empty means info
	Format  string // json or console; empty means json
	Verbose bool   // forces debug level
}

// New builds a logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	level, err := level(opts)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if opts.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// NewWriter builds a logger writing to w, for tests and for commands
// that route logs to a cobra output stream.
func NewWriter(w io.Writer, opts Options) (*zap.Logger, error) {
	level, err := level(opts)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

func level(opts Options) (zapcore.Level, error) {
	if opts.Verbose {
		return zapcore.DebugLevel, nil
	}
	if opts.Level == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
