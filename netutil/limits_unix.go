//go:build linux || darwin

package netutil

import (
	"fmt"
	"syscall"
)

// EnsureOpenFiles makes sure the process may hold at least n descriptors,
// raising the soft RLIMIT_NOFILE toward the hard limit when needed.
// It returns the soft limit in effect afterwards.
func EnsureOpenFiles(n uint64) (uint64, error) {
	var lim syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &lim); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	if lim.Cur >= n {
		return lim.Cur, nil
	}
	if lim.Max < n {
		return lim.Cur, fmt.Errorf("%w: need %d, hard limit is %d", ErrFDLimit, n, lim.Max)
	}

	lim.Cur = n
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &lim); err != nil {
		return 0, fmt.Errorf("%w: raising soft limit to %d: %v", ErrFDLimit, n, err)
	}
	return n, nil
}
