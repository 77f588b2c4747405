package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

var (
	log         = newLogger(os.Stderr)
	serviceName = ""
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure sets the process logger's level, output and service name.
// An unknown level leaves the logger at info.
func Configure(level, service string, out io.Writer) {
	if out != nil {
		log.SetOutput(out)
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	serviceName = service
}

func Logger() *logrus.Logger {
	return log
}

// WithContext returns a logger with trace context fields (trace_id, span_id) if available
func WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if serviceName != "" {
		fields["service.name"] = serviceName
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		fields["trace_id"] = spanCtx.TraceID().String()
		fields["span_id"] = spanCtx.SpanID().String()
		fields["trace_flags"] = spanCtx.TraceFlags().String()
	}

	return log.WithFields(fields)
}

func Info(ctx context.Context, msg string) {
	WithContext(ctx).Info(msg)
}

func Infof(ctx context.Context, format string, args ...any) {
	WithContext(ctx).Infof(format, args...)
}

func Warn(ctx context.Context, msg string) {
	WithContext(ctx).Warn(msg)
}

func Warnf(ctx context.Context, format string, args ...any) {
	WithContext(ctx).Warnf(format, args...)
}

func Error(ctx context.Context, msg string) {
	WithContext(ctx).Error(msg)
}

func Errorf(ctx context.Context, format string, args ...any) {
	WithContext(ctx).Errorf(format, args...)
}

// WithFields returns a logger entry with additional custom fields
func WithFields(ctx context.Context, fields map[string]any) *logrus.Entry {
	return WithContext(ctx).WithFields(fields)
}
