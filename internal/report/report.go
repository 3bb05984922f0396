// Package report turns errors into log entries and builds the process
// logger.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Compile-time interface check.
var _ types.Reporter = (*ZapReporter)(nil)

// ZapReporter reports errors to a zap logger, tagged with their kind.
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter returns a reporter writing to logger. A nil logger discards
// everything.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger}
}

// Report logs err at error level. Nil errors are ignored. An AppError
// contributes its message as a separate field.
func (r *ZapReporter) Report(err error) {
	if err == nil {
		return
	}
	kind := types.Classify(err)
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.Error(err),
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		fields = append(fields, zap.String("message", appErr.Message))
	}
	r.logger.Error("operation failed", fields...)
}

// NewLogger builds a production zap logger at the named level (debug, info,
// warn, error). An empty level means warn so routine commands stay quiet.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewConsoleLogger builds a logger writing console-encoded entries to w at
// the named level, for errors raised before the process logger exists.
func NewConsoleLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)
	return zap.New(core), nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
