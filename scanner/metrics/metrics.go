// Package metrics records scan instrumentation through OpenTelemetry.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const namespace = "scanner"

var (
	openAttr   = metric.WithAttributes(attribute.Bool("open", true))
	closedAttr = metric.WithAttributes(attribute.Bool("open", false))
)

// Scanner implements scanner.Metrics.
type Scanner struct {
	probes        metric.Int64Counter
	probeDuration metric.Float64Histogram
	openPorts     metric.Int64Counter
	activeWorkers metric.Int64UpDownCounter
	scans         metric.Int64Counter
	scanDuration  metric.Float64Histogram
}

// New creates the scanner instruments on mp.
func New(mp metric.MeterProvider) (*Scanner, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	s := new(Scanner)
	var err error

	if s.probes, err = meter.Int64Counter(
		"probes_total",
		metric.WithDescription("Total number of connect probes, split by outcome"),
	); err != nil {
		return nil, err
	}

	if s.probeDuration, err = meter.Float64Histogram(
		"probe_duration_seconds",
		metric.WithDescription("Time spent in a single connect probe"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if s.openPorts, err = meter.Int64Counter(
		"open_ports_total",
		metric.WithDescription("Total number of open ports discovered"),
	); err != nil {
		return nil, err
	}

	if s.activeWorkers, err = meter.Int64UpDownCounter(
		"active_workers",
		metric.WithDescription("Number of workers currently scanning"),
	); err != nil {
		return nil, err
	}

	if s.scans, err = meter.Int64Counter(
		"scans_total",
		metric.WithDescription("Total number of completed scans"),
	); err != nil {
		return nil, err
	}

	if s.scanDuration, err = meter.Float64Histogram(
		"scan_duration_seconds",
		metric.WithDescription("Wall time of a full scan"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scanner) ObserveProbe(ctx context.Context, d time.Duration, open bool) {
	s.probeDuration.Record(ctx, d.Seconds())
	if !open {
		s.probes.Add(ctx, 1, closedAttr)
		return
	}
	s.probes.Add(ctx, 1, openAttr)
	s.openPorts.Add(ctx, 1)
}

func (s *Scanner) WorkerStarted(ctx context.Context)  { s.activeWorkers.Add(ctx, 1) }
func (s *Scanner) WorkerFinished(ctx context.Context) { s.activeWorkers.Add(ctx, -1) }

func (s *Scanner) ObserveScan(ctx context.Context, d time.Duration, _ int) {
	s.scans.Add(ctx, 1)
	s.scanDuration.Record(ctx, d.Seconds())
}
