// Package utils contains general helpers shared across the glabtree tool.
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Messages used by the application entry point.
const (
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	ApplicationExecutionFailedMessage       = "application execution failed"
)

// NewApplicationLogger constructs a zap logger configured for human-readable
// console output. Verbose mode lowers the level to debug so that per-node
// and per-action diagnostics become visible.
func NewApplicationLogger(verbose bool) (*zap.Logger, error) {
	configuration := zap.NewProductionConfig()
	configuration.Encoding = "console"
	configuration.DisableCaller = true
	configuration.DisableStacktrace = true
	configuration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	configuration.EncoderConfig.TimeKey = ""
	configuration.EncoderConfig.NameKey = ""
	configuration.EncoderConfig.CallerKey = ""
	configuration.EncoderConfig.StacktraceKey = ""
	if verbose {
		configuration.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return configuration.Build()
}
