package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	movementCounter metric.Int64Counter
	conflictCounter metric.Int64Counter
)

func init() {
	var err error
	movementCounter, err = meter.Int64Counter("inventory.movements",
		metric.WithDescription("Movimientos confirmados en el ledger"),
		metric.WithUnit("{movement}"))
	if err != nil {
		panic(err)
	}
	conflictCounter, err = meter.Int64Counter("inventory.conflicts",
		metric.WithDescription("Operaciones rechazadas por conflicto de estado"),
		metric.WithUnit("{operation}"))
	if err != nil {
		panic(err)
	}
}

// startSpan abre un span para un caso de uso.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan registra el error (si hay) y cierra el span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func countMovement(ctx context.Context, typ string, quantity int) {
	movementCounter.Add(ctx, int64(quantity), metric.WithAttributes(attribute.String("type", typ)))
}

func countConflict(ctx context.Context, code string) {
	conflictCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
