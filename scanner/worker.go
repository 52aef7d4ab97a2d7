package scanner

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// WorkerState is the lifecycle position of a worker.
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateScanning
	StateProbing
	StateDone
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateProbing:
		return "probing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Worker probes every port of one Assignment in order.
type Worker struct {
	assignment Assignment
	target     netip.Addr
	dialer     Dialer
	timeout    time.Duration
	metrics    Metrics
	log        *zap.Logger

	state  atomic.Int32
	probed atomic.Int64
}

// NewWorker builds a worker for a. Zero fields in cfg take their defaults.
func NewWorker(a Assignment, target netip.Addr, cfg Config) *Worker {
	cfg = cfg.withDefaults()
	return &Worker{
		assignment: a,
		target:     target,
		dialer:     cfg.Dialer,
		timeout:    cfg.Timeout,
		metrics:    cfg.Metrics,
		log:        cfg.Logger.With(zap.Int("worker", a.Index)),
	}
}

// State returns the current lifecycle state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// Probed returns the number of ports attempted so far.
func (w *Worker) Probed() int { return int(w.probed.Load()) }

// Run probes the whole assignment and pushes each open port into sink.
// It returns once the sequence is exhausted. A cancelled ctx is only used by
// the coordinator to unwind a scan that failed to start.
func (w *Worker) Run(ctx context.Context, sink chan<- uint16) {
	defer w.setState(StateDone)

	a := w.assignment
	for p := int(a.Start); a.Stride > 0 && p <= int(a.Max); p += a.Stride {
		if ctx.Err() != nil {
			return
		}
		w.setState(StateScanning)
		if w.probe(ctx, uint16(p)) {
			sink <- uint16(p)
		}
	}
}

// probe makes a single connect attempt bounded by the worker timeout.
// Refused, timed out, unreachable and reset all count as not open.
func (w *Worker) probe(ctx context.Context, p uint16) bool {
	w.setState(StateProbing)
	w.probed.Add(1)

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	addr := netip.AddrPortFrom(w.target, p).String()
	start := time.Now()
	conn, err := w.dialer.DialContext(ctx, "tcp", addr)
	w.metrics.ObserveProbe(ctx, time.Since(start), err == nil)
	if err != nil {
		return false
	}
	_ = conn.Close()

	w.log.Debug("port open", zap.Uint16("port", p))
	return true
}

func (w *Worker) setState(s WorkerState) { w.state.Store(int32(s)) }
