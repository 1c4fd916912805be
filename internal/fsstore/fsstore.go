// Package fsstore reads and writes candidate files, reducing operating system
// errors to a small set of warnings the session can display.
package fsstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrPermission  = errors.New("permission denied")
	ErrNoSpace     = errors.New("no space left on device")
	ErrIsDirectory = errors.New("path is a directory")
)

// Error is a failed read or write.
type Error struct {
	Op   string
	Path string
	// Kind is one of the package sentinels, or nil when unrecognised.
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Kind != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Err}
}

// Warning renders err as a single user-facing line.
func Warning(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return err.Error()
	}
	verb := "read"
	if fe.Op == "write" {
		verb = "write"
	}
	switch fe.Kind {
	case ErrNotFound:
		return "File not found: " + fe.Path
	case ErrPermission:
		return "Permission denied: " + fe.Path
	case ErrIsDirectory:
		return "Path is a directory: " + fe.Path
	case ErrNoSpace:
		return "No space left on device: " + fe.Path
	default:
		return fmt.Sprintf("Failed to %s file %s: %v", verb, fe.Path, fe.Err)
	}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, syscall.ENOSPC):
		return ErrNoSpace
	case errors.Is(err, syscall.EISDIR):
		return ErrIsDirectory
	default:
		return nil
	}
}

func wrap(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: kindOf(err), Err: err}
}

// OS is the FileStore backed by the local filesystem.
type OS struct{}

// Read returns the contents of path.
func (OS) Read(path string) ([]byte, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, &Error{Op: "read", Path: path, Kind: ErrIsDirectory, Err: syscall.EISDIR}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap("read", path, err)
	}
	return data, nil
}

// Write replaces the contents of path, keeping its permissions. The data is
// written to a sibling temp file first so a failed write leaves the original
// intact. A symlink is resolved first so its target is updated and the link
// itself is left in place.
func (OS) Write(path string, data []byte) error {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}

	perm := fs.FileMode(0o644)
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return &Error{Op: "write", Path: path, Kind: ErrIsDirectory, Err: syscall.EISDIR}
	case err == nil:
		perm = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return wrap("write", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".rework-*")
	if err != nil {
		return wrap("write", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return wrap("write", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrap("write", path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return wrap("write", path, err)
	}
	return nil
}
