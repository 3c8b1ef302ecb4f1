package cmd

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kpumuk/lazycopy/internal/clipboard"
)

// newLogger builds a JSON file logger. The terminal belongs to the UI, so
// without a log file nothing is logged.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	return config.Build()
}

// logReporter writes copy events to a zap logger.
type logReporter struct {
	logger *zap.Logger
}

func (r logReporter) Report(e clipboard.Event) {
	switch e.Kind {
	case clipboard.EventCopied:
		r.logger.Debug("copied to clipboard",
			zap.Stringer("strategy", e.Strategy),
			zap.Int("bytes", e.Bytes),
			zap.Duration("duration", e.Duration))
	case clipboard.EventFailed:
		r.logger.Warn("copy failed",
			zap.Stringer("strategy", e.Strategy),
			zap.Int("bytes", e.Bytes),
			zap.Error(e.Err))
	case clipboard.EventReset:
		r.logger.Debug("copy confirmation expired")
	}
}
