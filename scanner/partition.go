package scanner

import (
	"errors"
	"fmt"

	"ipsniffer/port"
)

// ErrInvalidWorkerCount is returned when a scan is asked for fewer than one worker
// or more workers than there are ports.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// Assignment is the strided subset of the port range owned by one worker:
// Start, Start+Stride, Start+2*Stride, ... up to and including Max.
type Assignment struct {
	Index  int
	Start  uint16
	Stride int
	Max    uint16
}

// Partition splits r across n workers. Worker i starts at r.First+i and
// advances by n, so every port belongs to exactly one assignment.
func Partition(r port.Range, n int) ([]Assignment, error) {
	if n <= 0 || n > r.Len() {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidWorkerCount, n, r.Len())
	}
	out := make([]Assignment, n)
	for i := range out {
		out[i] = Assignment{
			Index:  i,
			Start:  r.First + uint16(i),
			Stride: n,
			Max:    r.Last,
		}
	}
	return out, nil
}

// Len returns how many ports the assignment covers.
func (a Assignment) Len() int {
	if a.Stride <= 0 || a.Start > a.Max {
		return 0
	}
	return (int(a.Max)-int(a.Start))/a.Stride + 1
}

// Ports lists the assignment in probe order.
func (a Assignment) Ports() []uint16 {
	out := make([]uint16, 0, a.Len())
	for p := int(a.Start); a.Stride > 0 && p <= int(a.Max); p += a.Stride {
		out = append(out, uint16(p))
	}
	return out
}
