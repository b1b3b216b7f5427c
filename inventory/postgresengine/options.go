package postgresengine

import (
	"context"
	"time"

	"github.com/libtrack/library-lending-go/inventory"
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// When configured, it takes precedence over Logger so log records carry the active
// trace and span IDs.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting BookStore performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext = inventory.SpanContext

// TracingCollector interface for collecting distributed tracing information from BookStore
// operations. This interface follows the same dependency-free pattern as MetricsCollector,
// allowing users to integrate with any tracing backend by implementing this interface.
type TracingCollector = inventory.TracingCollector

// Option defines a functional option for configuring BookStore.
type Option func(*BookStore) error

// WithTableName sets the table name for the BookStore.
func WithTableName(tableName string) Option {
	return func(bs *BookStore) error {
		if tableName == "" {
			return inventory.ErrEmptyBooksTableName
		}

		bs.booksTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the BookStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes, durations, concurrency conflicts (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(bs *BookStore) error {
		bs.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the BookStore.
// It receives the same messages as WithLogger but with the request context,
// enabling trace correlation through adapters like oteladapters.SlogBridgeLogger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(bs *BookStore) error {
		bs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the BookStore.
// The metrics collector will receive performance and operational metrics including
// query/write durations, concurrency conflicts, and duplicate-ISBN rejections.
func WithMetrics(collector MetricsCollector) Option {
	return func(bs *BookStore) error {
		bs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the BookStore.
// The tracing collector will receive distributed tracing information including
// span creation for read/write operations and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(bs *BookStore) error {
		bs.tracingCollector = collector
		return nil
	}
}
