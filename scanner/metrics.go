package scanner

import (
	"context"
	"time"
)

// Metrics receives scan instrumentation. Implementations must be safe for
// concurrent use since every worker reports through the same value.
type Metrics interface {
	ObserveProbe(ctx context.Context, d time.Duration, open bool)
	WorkerStarted(ctx context.Context)
	WorkerFinished(ctx context.Context)
	ObserveScan(ctx context.Context, d time.Duration, openPorts int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveProbe(context.Context, time.Duration, bool) {}
func (noopMetrics) WorkerStarted(context.Context)                     {}
func (noopMetrics) WorkerFinished(context.Context)                    {}
func (noopMetrics) ObserveScan(context.Context, time.Duration, int)   {}
