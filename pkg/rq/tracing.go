package rq

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for engine spans.
const defaultTracerName = "github.com/vango-dev/requery/pkg/rq"

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

// startPass opens the span of one list reconciliation pass.
func (r *Registry) startPass(list, strategy string, items int) trace.Span {
	_, span := r.tracer.Start(context.Background(), "rq.list.pass",
		trace.WithAttributes(
			attribute.String("rq.list", list),
			attribute.String("rq.strategy", strategy),
			attribute.Int("rq.items", items),
		),
	)
	return span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
