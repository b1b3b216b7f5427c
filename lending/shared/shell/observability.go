package shell

import (
	"context"
	"fmt"
	"time"
)

const (
	// LogAttrCommandType is the structured-log and metric label carrying the command type.
	LogAttrCommandType = "command_type"

	// CommandHandlerRetriesMetric counts retry attempts by command type and error type.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric records the backoff delay before each retry attempt.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts retry-budget exhaustions by command type.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"
)

// MetricsCollector interface for collecting retry instrumentation from command handlers.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods for
// trace correlation. Handlers use the context-aware methods when available, falling
// back to the base interface.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// BuildRetryLabels builds the metric labels for one retry attempt.
func BuildRetryLabels(commandType string, attempt int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   fmt.Sprintf("%d", attempt),
		"error_type":       errorType,
	}
}
