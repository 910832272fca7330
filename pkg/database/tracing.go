package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Shorabul/Homigo-Server/pkg/database"

// slowQueries holds the process-wide slow query logging settings. Guarded
// by a mutex because tests reconfigure it while queries run.
var slowQueries struct {
	mu        sync.RWMutex
	threshold time.Duration
	logger    *slog.Logger
}

// SetSlowQueryLogging turns on slow query warnings for operations that run
// longer than threshold. A zero threshold or nil logger disables it.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueries.mu.Lock()
	slowQueries.threshold = threshold
	slowQueries.logger = logger
	slowQueries.mu.Unlock()
}

func logSlowQuery(ctx context.Context, operation, statement string, elapsed time.Duration, err error) {
	slowQueries.mu.RLock()
	threshold, logger := slowQueries.threshold, slowQueries.logger
	slowQueries.mu.RUnlock()

	if threshold <= 0 || logger == nil || elapsed < threshold {
		return
	}

	attrs := []any{
		slog.String("operation", operation),
		slog.String("statement", statement),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.WarnContext(ctx, "slow query detected", attrs...)
}

// TraceQuery starts a client span for a database operation. The returned
// function must run when the operation completes, typically via defer:
//
//	ctx, end := database.TraceQuery(ctx, "GetService", query)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		logSlowQuery(ctx, operation, statement, time.Since(start), err)
	}
}
