package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"ipsniffer/netutil"
	"ipsniffer/port"
)

const (
	// DefaultWorkers matches the worker count used when none is requested.
	DefaultWorkers = 50

	// DefaultTimeout bounds every connect probe.
	DefaultTimeout = 500 * time.Millisecond

	// fdHeadroom covers stdio, log sinks and telemetry exporters on top of
	// one in-flight socket per worker.
	fdHeadroom = 32
)

var (
	// ErrResourceExhausted aborts a scan that could not start all of its workers.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrInvalidTarget is returned for a zero netip.Addr.
	ErrInvalidTarget = errors.New("invalid scan target")
)

// Config contains runtime configuration for the Manager and its workers.
type Config struct {
	Timeout time.Duration
	Dialer  Dialer
	Logger  *zap.Logger
	Metrics Metrics
	Tracer  trace.Tracer
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{KeepAlive: -1}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
	if c.Tracer == nil {
		c.Tracer = noop.NewTracerProvider().Tracer("ipsniffer/scanner")
	}
	return c
}

// workerPool is the subset of *ants.Pool the manager relies on.
type workerPool interface {
	Submit(task func()) error
	Release()
}

// Manager coordinates a scan: partitioning, spawning, joining and ordering.
type Manager struct {
	cfg Config

	newPool    func(size int) (workerPool, error)
	reserveFDs func(n uint64) (uint64, error)
}

// NewManager creates a new Manager with the provided config.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:        cfg.withDefaults(),
		newPool:    newAntsPool,
		reserveFDs: netutil.EnsureOpenFiles,
	}
}

func newAntsPool(size int) (workerPool, error) {
	return ants.NewPool(size, ants.WithNonblocking(true))
}

// Start scans every port of target with workers concurrent workers and returns
// the open ports in ascending order. It blocks until every worker is done;
// cancelling ctx does not stop a running scan.
//
// If any worker cannot be started the scan is abandoned and ErrResourceExhausted
// is returned without a report.
func (m *Manager) Start(ctx context.Context, target netip.Addr, workers int) (*Report, error) {
	if !target.IsValid() {
		return nil, ErrInvalidTarget
	}
	assignments, err := Partition(port.Full, workers)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	log := m.cfg.Logger.With(zap.String("scan_id", id.String()))

	ctx, span := m.cfg.Tracer.Start(ctx, "scanner.Start", trace.WithAttributes(
		attribute.String("scan.id", id.String()),
		attribute.String("scan.target", target.String()),
		attribute.Int("scan.workers", workers),
	))
	defer span.End()

	fail := func(err error) (*Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan aborted")
		log.Warn("scan aborted", zap.Error(err))
		return nil, err
	}

	if _, err := m.reserveFDs(uint64(workers) + fdHeadroom); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrResourceExhausted, err))
	}

	pool, err := m.newPool(workers)
	if err != nil {
		return fail(fmt.Errorf("%w: creating worker pool: %v", ErrResourceExhausted, err))
	}
	defer pool.Release()

	log.Info("starting scan",
		zap.Stringer("target", target),
		zap.Int("workers", workers),
		zap.Duration("timeout", m.cfg.Timeout),
	)

	// Workers only stop early when the scan is being unwound after a spawn failure.
	runCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	defer abort()

	sink := make(chan uint16, port.Full.Len())
	pending := make([]*Worker, 0, workers)
	started := time.Now()

	var wg sync.WaitGroup
	for _, a := range assignments {
		w := NewWorker(a, target, m.cfg)
		wg.Add(1)
		m.cfg.Metrics.WorkerStarted(ctx)
		task := func() {
			defer wg.Done()
			defer m.cfg.Metrics.WorkerFinished(ctx)
			w.Run(runCtx, sink)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			m.cfg.Metrics.WorkerFinished(ctx)
			abort()
			wg.Wait()
			return fail(fmt.Errorf("%w: starting worker %d of %d: %v", ErrResourceExhausted, a.Index+1, workers, err))
		}
		pending = append(pending, w)
	}

	wg.Wait()
	close(sink)

	report := newReport(id, target, workers, m.cfg.Timeout, started, collect(sink))
	for _, w := range pending {
		report.Probed += w.Probed()
	}

	m.cfg.Metrics.ObserveScan(ctx, report.Duration, len(report.Open))
	span.SetAttributes(
		attribute.Int("scan.open_ports", len(report.Open)),
		attribute.Int("scan.probed", report.Probed),
	)
	log.Info("scan complete",
		zap.Int("open_ports", len(report.Open)),
		zap.Int("probed", report.Probed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
