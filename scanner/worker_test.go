package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func drain(sink chan uint16) []uint16 {
	close(sink)
	var out []uint16
	for p := range sink {
		out = append(out, p)
	}
	return out
}

func TestWorker_Run(t *testing.T) {
	dialer := newFakeDialer(map[uint16]time.Duration{11: 0, 51: 0, 52: 0})
	a := Assignment{Index: 0, Start: 1, Stride: 10, Max: 100}
	w := NewWorker(a, testTarget, Config{Dialer: dialer, Timeout: time.Second, Logger: zaptest.NewLogger(t)})
	assert.Equal(t, StateIdle, w.State())

	sink := make(chan uint16, a.Len())
	w.Run(context.Background(), sink)

	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, 10, w.Probed())
	assert.Equal(t, []uint16{11, 51}, drain(sink), "52 is not in the assignment")

	counts := dialer.dialCounts()
	assert.Len(t, counts, 10)
	for _, p := range a.Ports() {
		assert.Equal(t, 1, counts[p], "port %d probed once, no retries", p)
	}
}

func TestWorker_ProbeTimeout(t *testing.T) {
	// The listener answers after the probe budget is spent, so the port reads as closed.
	dialer := newFakeDialer(map[uint16]time.Duration{5: 2 * time.Second})
	a := Assignment{Start: 5, Stride: 1, Max: 5}
	w := NewWorker(a, testTarget, Config{Dialer: dialer, Timeout: 50 * time.Millisecond})

	sink := make(chan uint16, 1)
	start := time.Now()
	w.Run(context.Background(), sink)

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, drain(sink))
}

func TestWorker_StopsWhenAborted(t *testing.T) {
	dialer := newFakeDialer(nil)
	w := NewWorker(Assignment{Start: 1, Stride: 1, Max: 1000}, testTarget, Config{Dialer: dialer})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := make(chan uint16, 1)
	w.Run(ctx, sink)

	assert.Equal(t, StateDone, w.State())
	assert.Zero(t, dialer.calls.Load())
}

func TestWorkerState_String(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "scanning", StateScanning.String())
	require.Equal(t, "probing", StateProbing.String())
	require.Equal(t, "done", StateDone.String())
	require.Equal(t, "unknown", WorkerState(42).String())
}
