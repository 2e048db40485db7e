package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures the service logger.
type Options struct {
	// Level is a zap level name. Empty means info.
	Level string
	// Format is "json" or "console". Empty picks console for the
	// development environment and json everywhere else.
	Format      string
	Environment string
	Service     string
}

// format resolves the output format.
func (opts Options) format() string {
	if opts.Format != "" {
		return opts.Format
	}
	if opts.Environment == "development" {
		return FormatConsole
	}
	return FormatJSON
}

// NewLogger builds the zap logger for the attendance service.
func NewLogger(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var config zap.Config
	switch opts.format() {
	case FormatConsole:
		config = zap.NewDevelopmentConfig()
	case FormatJSON:
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	default:
		return nil, fmt.Errorf("invalid log format %q (expected %q or %q)", opts.Format, FormatJSON, FormatConsole)
	}
	config.Level = zap.NewAtomicLevelAt(level)

	base, err := config.Build()
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{}
	if opts.Service != "" {
		fields = append(fields, zap.String("service_name", opts.Service))
	}
	if opts.Environment != "" {
		fields = append(fields, zap.String("environment", opts.Environment))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		fields = append(fields, zap.String("hostname", hostname))
	}
	return base.With(fields...), nil
}
