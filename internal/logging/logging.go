// Package logging provides the pipeline's structured logger. Every
// pipeline run is tagged with a request ID (see internal/pipeline) so log
// lines from preprocessing through semantic tokenization for one document
// can be correlated (spec §5: "single-threaded and synchronous per
// request").
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger (JSON encoding to stderr). Library code
// should accept a *zap.Logger rather than calling this directly; it is a
// CLI-facing constructor.
func New(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		// Logger construction only fails on a malformed encoder/sink
		// configuration, which the two branches above never produce.
		return zap.NewNop()
	}

	return logger
}

// ForRun returns a child logger tagged with the pipeline run's
// correlation ID.
func ForRun(base *zap.Logger, runID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}

	return base.With(zap.String("run_id", runID))
}
