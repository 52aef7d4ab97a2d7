package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_Overwrite(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(final, []byte("original"), 0o644))

	require.NoError(t, WriteAtomic(final, []byte("newcontent")))

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "newcontent", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteAtomic_CreatesDirectory(t *testing.T) {
	final := filepath.Join(t.TempDir(), "result", "scan.txt")
	require.NoError(t, WriteAtomic(final, []byte("x")))

	info, err := os.Stat(final)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteAtomic_FailPreservesOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	final := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(final, []byte("original"), 0o644))

	// make dir read/execute only so CreateTemp fails
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	require.Error(t, WriteAtomic(final, []byte("should-not-write")))

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}
