package port

// Min and Max bound the TCP port domain.
const (
	Min uint16 = 1
	Max uint16 = 65535
)

// Range is a closed interval of TCP ports.
type Range struct {
	First uint16
	Last  uint16
}

// Full is the range every scan covers. It is not user-narrowable.
var Full = Range{First: Min, Last: Max}

// Len returns the number of ports in the range.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return int(r.Last) - int(r.First) + 1
}

// Contains reports whether p lies inside the range.
func (r Range) Contains(p uint16) bool {
	return p >= r.First && p <= r.Last
}
