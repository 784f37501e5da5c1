package logger

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv turns on debug logging when set to "1".
const DebugEnv = "TERMIND_DEBUG"

// ZapLogger adapts a zap.Logger to the field-map logging port.
type ZapLogger struct {
	zl *zap.Logger
}

// New builds a logger writing to stderr. Production (JSON, warn level) by
// default; development console output at debug level when verbose is set or
// TERMIND_DEBUG=1.
func New(verbose bool) (*ZapLogger, error) {
	if os.Getenv(DebugEnv) == "1" {
		verbose = true
	}

	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{zl: zl}, nil
}

// NewNop discards everything. Used by tests.
func NewNop() *ZapLogger {
	return &ZapLogger{zl: zap.NewNop()}
}

// Wrap adapts an existing zap logger.
func Wrap(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{zl: zl}
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug(msg, toZap(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info(msg, toZap(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn(msg, toZap(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.zl.Error(msg, append(toZap(fields), zap.Error(err))...)
}

// Enabled reports whether lvl would be written.
func (l *ZapLogger) Enabled(lvl zapcore.Level) bool {
	return l.zl.Core().Enabled(lvl)
}

// Sync flushes buffered entries; errors from syncing a terminal are ignored.
func (l *ZapLogger) Sync() {
	_ = l.zl.Sync()
}

// toZap sorts keys so output is stable across runs.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
