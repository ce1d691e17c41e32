package stripegw

import (
	"context"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v72"
)

// slogLogger adapts slog to the SDK's leveled logger.
type slogLogger struct{ l *slog.Logger }

var _ stripe.LeveledLoggerInterface = slogLogger{}

// NewSlogLogger returns a stripe.LeveledLoggerInterface writing to l, or to slog.Default() when l is nil.
func NewSlogLogger(l *slog.Logger) stripe.LeveledLoggerInterface {
	return slogLogger{l: l}
}

func (s slogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

func (s slogLogger) log(level slog.Level, format string, v ...interface{}) {
	l := s.logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, v...), "component", "stripe")
}

func (s slogLogger) Debugf(format string, v ...interface{}) { s.log(slog.LevelDebug, format, v...) }
func (s slogLogger) Infof(format string, v ...interface{})  { s.log(slog.LevelInfo, format, v...) }
func (s slogLogger) Warnf(format string, v ...interface{})  { s.log(slog.LevelWarn, format, v...) }
func (s slogLogger) Errorf(format string, v ...interface{}) { s.log(slog.LevelError, format, v...) }
