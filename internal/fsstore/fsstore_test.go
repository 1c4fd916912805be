package fsstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0o644))

	data, err := OS{}.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(data))
}

func TestRead_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.go")
	_, err := OS{}.Read(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "File not found: "+path, Warning(err))
}

func TestRead_Directory(t *testing.T) {
	dir := t.TempDir()
	_, err := OS{}.Read(dir)
	assert.ErrorIs(t, err, ErrIsDirectory)
	assert.Equal(t, "Path is a directory: "+dir, Warning(err))

	err = OS{}.Write(dir, []byte("x"))
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestRead_Permission(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	path := filepath.Join(t.TempDir(), "locked.go")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o000))

	_, err := OS{}.Read(path)
	assert.ErrorIs(t, err, ErrPermission)
	assert.Contains(t, Warning(err), "Permission denied")
}

func TestWrite_PreservesModeAndContent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo old\n"), 0o755))

	require.NoError(t, OS{}.Write(path, []byte("echo new\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo new\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWrite_ThroughSymlinkUpdatesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.go")
	link := filepath.Join(dir, "link.go")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	require.NoError(t, OS{}.Write(link, []byte("new")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link was replaced by a regular file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file left behind")
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "a.go")
	err := OS{}.Write(path, []byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrNoSpace, kindOf(fmt.Errorf("write: %w", syscall.ENOSPC)))
	assert.Equal(t, ErrIsDirectory, kindOf(syscall.EISDIR))
	assert.Nil(t, kindOf(errors.New("other")))
}

func TestWarning(t *testing.T) {
	err := &Error{Op: "write", Path: "/x/a.go", Kind: ErrNoSpace, Err: syscall.ENOSPC}
	assert.Equal(t, "No space left on device: /x/a.go", Warning(err))
	assert.ErrorIs(t, err, syscall.ENOSPC)

	other := &Error{Op: "write", Path: "/x/a.go", Err: errors.New("disk on fire")}
	assert.Equal(t, "Failed to write file /x/a.go: disk on fire", Warning(other))
	assert.Equal(t, "plain", Warning(errors.New("plain")))
}
