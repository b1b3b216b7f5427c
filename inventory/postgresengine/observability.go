package postgresengine

import (
	"context"
	"math"
	"time"
)

const (
	metricQueryDuration = "bookstore_query_duration_seconds"
	metricExecDuration  = "bookstore_exec_duration_seconds"
	metricConflicts     = "bookstore_conflicts_total"

	spanNameQuery  = "bookstore.query"
	spanNamePrefix = "bookstore."
	spanAttrQuery  = "db.statement"

	labelConflictType = "conflict_type"
	labelOperation    = "operation"

	conflictTypeConcurrency   = "concurrency"
	conflictTypeDuplicateISBN = "duplicate_isbn"

	statusOK    = "ok"
	statusError = "error"
)

// logQueryWithDuration logs SQL queries with execution time at debug level.
// A configured contextual logger takes precedence for trace correlation.
func (bs BookStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if bs.contextualLogger != nil {
		bs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, bs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if bs.logger != nil {
		bs.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, bs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (bs BookStore) logOperation(ctx context.Context, action string, args ...any) {
	if bs.contextualLogger != nil {
		bs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if bs.logger != nil {
		bs.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level.
func (bs BookStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if bs.contextualLogger != nil {
		bs.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if bs.logger != nil {
		bs.logger.Error(message, allArgs...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (bs BookStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation durations if the metrics collector is configured.
func (bs BookStore) recordDurationMetrics(metricName string, duration time.Duration) {
	if bs.metricsCollector != nil {
		bs.metricsCollector.RecordDuration(metricName, duration, nil)
	}
}

// recordConflictMetrics records conflict counters if the metrics collector is configured.
func (bs BookStore) recordConflictMetrics(operation string, conflictType string) {
	if bs.metricsCollector != nil {
		labels := map[string]string{
			labelOperation:    operation,
			labelConflictType: conflictType,
		}
		bs.metricsCollector.IncrementCounter(metricConflicts, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (bs BookStore) startTraceSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, SpanContext) {

	if bs.tracingCollector != nil {
		return bs.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (bs BookStore) finishTraceSpan(spanCtx SpanContext, status string) {
	if bs.tracingCollector != nil && spanCtx != nil {
		bs.tracingCollector.FinishSpan(spanCtx, status, nil)
	}
}
