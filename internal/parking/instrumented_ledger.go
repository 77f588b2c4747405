package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-ledger/internal/logging"
)

type InstrumentedLedger struct {
	*Ledger
	telemetry *TelemetryProvider

	// Metrics
	parkOperations    metric.Int64Counter
	departOperations  metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	feesCollected     metric.Int64Counter
}

func NewInstrumentedLedger(capacity int, telemetry *TelemetryProvider) (*InstrumentedLedger, error) {
	base, err := NewLedger(capacity)
	if err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	parkOperations, err := meter.Int64Counter("ledger_park_operations_total",
		metric.WithDescription("Total number of park requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	departOperations, err := meter.Int64Counter("ledger_depart_operations_total",
		metric.WithDescription("Total number of depart requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("ledger_occupancy",
		metric.WithDescription("Current number of parked vehicles"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("ledger_operation_duration_seconds",
		metric.WithDescription("Duration of ledger operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Int64Counter("ledger_fees_collected_total",
		metric.WithDescription("Sum of departure fees charged"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedLedger{
		Ledger:            base,
		telemetry:         telemetry,
		parkOperations:    parkOperations,
		departOperations:  departOperations,
		occupancyGauge:    occupancyGauge,
		operationDuration: operationDuration,
		feesCollected:     feesCollected,
	}, nil
}

func (il *InstrumentedLedger) Park(ctx context.Context, plate string, ts time.Time) (*Entry, error) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "ledger.park",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("arrival", ts.Format(time.RFC3339)),
		))
	defer span.End()

	start := time.Now()

	entry, err := il.Ledger.Park(plate, ts)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("status", statusLabel(err)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("ticket", entry.Ticket.String()))
		span.AddEvent("vehicle_parked", trace.WithAttributes(
			attribute.Int("occupied", il.Occupied()),
		))
		il.occupancyGauge.Add(ctx, 1)
	}

	il.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return entry, err
}

func (il *InstrumentedLedger) Depart(ctx context.Context, plate string, ts time.Time) (Receipt, error) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "ledger.depart",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("departure", ts.Format(time.RFC3339)),
		))
	defer span.End()

	start := time.Now()

	receipt, err := il.Ledger.Depart(plate, ts)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "depart"),
		attribute.String("status", statusLabel(err)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		if receipt.Backdated() {
			span.AddEvent("departure_before_arrival")
			logging.WithFields(ctx, map[string]any{
				"plate":     plate,
				"arrival":   receipt.ArrivedAt,
				"departure": receipt.DepartedAt,
			}).Warn("departure precedes arrival, billing zero hours")
		}
		span.SetAttributes(
			attribute.String("ticket", receipt.Ticket.String()),
			attribute.Int("billed_hours", receipt.Hours),
			attribute.Int("fee", receipt.Fee),
		)
		span.AddEvent("vehicle_departed")
		il.occupancyGauge.Add(ctx, -1)
		il.feesCollected.Add(ctx, int64(receipt.Fee))
	}

	il.departOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (il *InstrumentedLedger) Snapshot(ctx context.Context) []string {
	ctx, span := il.telemetry.Tracer().Start(ctx, "ledger.snapshot")
	defer span.End()

	start := time.Now()

	plates := il.Ledger.Snapshot()

	span.SetAttributes(
		attribute.Int("occupied", len(plates)),
		attribute.Int("capacity", il.Capacity()),
	)

	il.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "snapshot"),
		attribute.String("status", "success"),
	))

	return plates
}

func (il *InstrumentedLedger) Lookup(ctx context.Context, plate string) (Entry, bool) {
	_, span := il.telemetry.Tracer().Start(ctx, "ledger.lookup",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	entry, ok := il.Ledger.Lookup(plate)
	if ok {
		span.AddEvent("vehicle_found")
	} else {
		span.AddEvent("vehicle_not_found")
	}
	return entry, ok
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrLotFull):
		return "full"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "failed"
	}
}
