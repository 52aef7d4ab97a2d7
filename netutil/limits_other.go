//go:build !linux && !darwin

package netutil

// EnsureOpenFiles is a no-op on platforms without RLIMIT_NOFILE handling in this build.
// The reported limit is n itself.
func EnsureOpenFiles(n uint64) (uint64, error) {
	return n, nil
}
