package mongodb

import (
	"context"
	stderrors "errors"
	"sync"

	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/multimongo/observability"
)

// CommandMonitor traces every command of a slot as a client span and
// records it in metrics when metrics is not nil.
func CommandMonitor(slot string, metrics *observability.Metrics) *event.CommandMonitor {
	tracer := observability.Tracer(observability.InstrumentationName + "/mongodb")
	var spans sync.Map // request id -> trace.Span

	finish := func(ctx context.Context, evt event.CommandFinishedEvent, failure string) {
		status := observability.StatusOK
		if failure != "" {
			status = observability.StatusError
		}
		if v, ok := spans.LoadAndDelete(evt.RequestID); ok {
			span := v.(trace.Span)
			if failure != "" {
				span.RecordError(stderrors.New(failure))
				span.SetStatus(codes.Error, failure)
			}
			span.End()
		}
		if metrics != nil {
			metrics.RecordCommand(ctx, slot, evt.DatabaseName, evt.CommandName, status, evt.Duration)
		}
	}

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			_, span := tracer.Start(ctx, observability.SpanDBCommand+" "+evt.CommandName,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String(observability.AttrDBSystem, "mongodb"),
					attribute.String(observability.AttrDBName, evt.DatabaseName),
					attribute.String(observability.AttrDBOperation, evt.CommandName),
					attribute.String(observability.AttrSlot, slot),
					attribute.String(observability.AttrConnectionID, evt.ConnectionID),
				),
			)
			spans.Store(evt.RequestID, span)
			if metrics != nil {
				metrics.RecordCommandStart(ctx, slot)
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			finish(ctx, evt.CommandFinishedEvent, "")
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			finish(ctx, evt.CommandFinishedEvent, evt.Failure)
		},
	}
}
