package scanner

import (
	"net/netip"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Report is the final result of one scan. Open is always ascending.
type Report struct {
	ID        uuid.UUID
	Target    netip.Addr
	Workers   int
	Timeout   time.Duration
	Probed    int
	Open      []uint16
	StartedAt time.Time
	Duration  time.Duration
}

// Count returns the number of open ports.
func (r *Report) Count() int { return len(r.Open) }

func newReport(id uuid.UUID, target netip.Addr, workers int, timeout time.Duration, started time.Time, open []uint16) *Report {
	return &Report{
		ID:        id,
		Target:    target,
		Workers:   workers,
		Timeout:   timeout,
		Open:      open,
		StartedAt: started,
		Duration:  time.Since(started),
	}
}

// collect drains a closed sink and sorts what it held.
func collect(sink <-chan uint16) []uint16 {
	open := make([]uint16, 0, len(sink))
	for p := range sink {
		open = append(open, p)
	}
	slices.Sort(open)
	return open
}
