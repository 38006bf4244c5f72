// Package logging builds the zap logger shared by the CLI and the packages
// it wires together.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger writing JSON to stderr. verbose lowers the
// level to debug.
func New(verbose bool) (*zap.Logger, error) {
	return build(verbose, []string{"stderr"})
}

// NewFile is New with an additional output file, used by the long-running
// run command so shell events land next to the backend log.
func NewFile(verbose bool, path string) (*zap.Logger, error) {
	return build(verbose, []string{"stderr", path})
}

func build(verbose bool, outputs []string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = outputs
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("foldline"), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
