package dirtree

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFaultIsolation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced the same way on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("running as root; permission failures cannot be simulated")
	}

	root := t.TempDir()

	writeFile(t, filepath.Join(root, "ok", "file"), 10)
	writeFile(t, filepath.Join(root, "bad", "file"), 5)

	bad := filepath.Join(root, "bad")
	require.NoError(t, os.Chmod(bad, 0o000))
	t.Cleanup(func() { _ = os.Chmod(bad, 0o755) })

	result, err := Run(context.Background(), Options{Path: root, Logger: quietLogger()}, nil)
	require.NoError(t, err)

	// The unreadable subtree degrades to size 0; siblings and the root are
	// computed as if it were empty, and the run still completes.
	assert.Equal(t, int64(10), result.Root.Size)
	require.Len(t, result.Root.Children, 2)

	var badEntry, okEntry *Entry

	for _, child := range result.Root.Children {
		switch filepath.Base(child.Path) {
		case "bad":
			badEntry = child
		case "ok":
			okEntry = child
		}
	}

	require.NotNil(t, badEntry)
	require.NotNil(t, okEntry)

	assert.Equal(t, int64(0), badEntry.Size)
	assert.Empty(t, badEntry.Children)
	assert.True(t, badEntry.IsDir())

	assert.Equal(t, int64(10), okEntry.Size)
	require.Len(t, okEntry.Children, 1)
}

func TestResolveSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := t.TempDir()

	writeFile(t, filepath.Join(root, "real"), 42)
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	result, err := Run(context.Background(), Options{Path: root, Logger: quietLogger()}, nil)
	require.NoError(t, err)

	// The link is a size-0 leaf, never followed, so nothing double-counts.
	assert.Equal(t, int64(42), result.Root.Size)
	require.Len(t, result.Root.Children, 2)
}

func TestResolveWideTree(t *testing.T) {
	root := t.TempDir()

	// Enough sibling directories to exercise the semaphore bound.
	for i := 0; i < 40; i++ {
		writeFile(t, filepath.Join(root, "d"+string(rune('a'+i%26))+string(rune('a'+i/26)), "f"), 3)
	}

	result, err := Run(context.Background(), Options{Path: root, Concurrency: 2, Logger: quietLogger()}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(120), result.Root.Size)
	assert.Len(t, result.Root.Children, 40)
	assert.Equal(t, int64(40), result.FileCount)
}
