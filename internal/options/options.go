package options

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type (
	loggerKey struct{}
	strictKey struct{}
)

// WithLogger stores the logger used by decoding steps inside the context.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, log)
}

// Logger retrieves the logger from context, falling back to the standard
// logrus logger.
func Logger(ctx context.Context) logrus.FieldLogger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}

// WithStrict marks the context so that partially derived layouts are
// reported as errors.
func WithStrict(ctx context.Context, strict bool) context.Context {
	return context.WithValue(ctx, strictKey{}, strict)
}

// Strict reports whether strict decoding was requested.
func Strict(ctx context.Context) bool {
	strict, _ := ctx.Value(strictKey{}).(bool)
	return strict
}

// ParseLevel parses a log level name, accepting surrounding whitespace and
// any case. An empty string means info.
func ParseLevel(input string) (logrus.Level, error) {
	clean := strings.ToLower(strings.TrimSpace(input))
	if clean == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", input, err)
	}
	return level, nil
}
