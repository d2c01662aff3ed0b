package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/multimongo/logger"
)

// Command statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// InitMeter installs a global meter provider pushing to cfg.Endpoint every
// cfg.Interval. The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, cfg Config, id Identity) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := id.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", id.Service,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics records MongoDB command activity per slot.
type Metrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewMetrics creates the command instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	total, err := meter.Int64Counter("mongodb.command.total",
		metric.WithDescription("MongoDB commands by slot, database, command and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mongodb.command.total: %w", err)
	}
	duration, err := meter.Float64Histogram("mongodb.command.duration",
		metric.WithDescription("MongoDB command latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mongodb.command.duration: %w", err)
	}
	inFlight, err := meter.Int64UpDownCounter("mongodb.command.active",
		metric.WithDescription("MongoDB commands in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mongodb.command.active: %w", err)
	}
	return &Metrics{total: total, duration: duration, inFlight: inFlight}, nil
}

// RecordCommandStart marks a command of slot as in flight.
func (m *Metrics) RecordCommandStart(ctx context.Context, slot string) {
	m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSlot, slot)))
}

// RecordCommand records a finished command and clears its in-flight mark.
func (m *Metrics) RecordCommand(ctx context.Context, slot, database, command, status string, elapsed time.Duration) {
	bySlot := attribute.String(AttrSlot, slot)
	m.inFlight.Add(ctx, -1, metric.WithAttributes(bySlot))
	m.total.Add(ctx, 1, metric.WithAttributes(
		bySlot,
		attribute.String(AttrDBName, database),
		attribute.String(AttrDBOperation, command),
		attribute.String(AttrStatus, status),
	))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		bySlot,
		attribute.String(AttrDBOperation, command),
	))
}
