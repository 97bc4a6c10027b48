package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestWritePrivate_CreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state", "nested", "ticket")

	require.NoError(t, WritePrivate(path, []byte("abc")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

		di, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o700), di.Mode().Perm()&0o700)
	}
}

func TestWritePrivate_RelativePathAndOverwrite(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile(filepath.Join(tmp, "ticket"), []byte("old"), 0o644))
	require.NoError(t, WritePrivate("ticket", []byte("new")))

	b, err := os.ReadFile(filepath.Join(tmp, "ticket"))
	require.NoError(t, err)
	require.Equal(t, "new", string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(filepath.Join(tmp, "ticket"))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestWritePrivate_ParentIsAFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := WritePrivate(filepath.Join(blocker, "ticket"), []byte("abc"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "mkdir")
}
