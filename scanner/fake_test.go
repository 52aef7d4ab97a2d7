package scanner

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var testTarget = netip.MustParseAddr("192.0.2.10")

// fakeDialer accepts connections only on the configured ports, optionally
// after an artificial delay.
type fakeDialer struct {
	open  map[uint16]time.Duration
	calls atomic.Int64

	mu    sync.Mutex
	dials map[uint16]int
}

func newFakeDialer(open map[uint16]time.Duration) *fakeDialer {
	return &fakeDialer{open: open, dials: make(map[uint16]int)}
}

func (d *fakeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls.Add(1)
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return nil, err
	}
	if network != "tcp" || ap.Addr() != testTarget {
		return nil, errors.New("unexpected dial " + network + " " + address)
	}

	d.mu.Lock()
	d.dials[ap.Port()]++
	d.mu.Unlock()

	delay, ok := d.open[ap.Port()]
	if !ok {
		return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func (d *fakeDialer) dialCounts() map[uint16]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[uint16]int, len(d.dials))
	for k, v := range d.dials {
		out[k] = v
	}
	return out
}

// goPool runs tasks on plain goroutines and refuses every submit after limit.
type goPool struct {
	limit     int
	submitted int
}

func (p *goPool) Submit(task func()) error {
	if p.submitted >= p.limit {
		return errors.New("pool overload")
	}
	p.submitted++
	go task()
	return nil
}

func (p *goPool) Release() {}
