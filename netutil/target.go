package netutil

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// ErrInvalidTarget is returned for anything that is not a plain IP literal.
var ErrInvalidTarget = errors.New("invalid target address")

// ParseTarget parses an IPv4 or IPv6 literal into the address that will be scanned.
// Hostnames are not resolved and zoned IPv6 addresses are rejected.
// IPv4-mapped IPv6 addresses are unmapped so "::ffff:10.0.0.1" scans 10.0.0.1.
func ParseTarget(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w %q", ErrInvalidTarget, s)
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w %q: zoned addresses are not supported", ErrInvalidTarget, s)
	}
	return addr.Unmap(), nil
}
