package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsoleDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Options{Console: &buf})
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("loud", zap.String("path", "a.go"))
	require.NoError(t, closeFn())

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), `"path": "a.go"`)
}

func TestVerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Options{Console: &buf, Verbose: true})
	require.NoError(t, err)
	log.Debug("details")
	require.NoError(t, closeFn())
	assert.Contains(t, buf.String(), "details")
}

func TestFileReceivesJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "rework.log")
	log, closeFn, err := New(Options{Console: &buf, File: path})
	require.NoError(t, err)

	log.Info("session started", zap.String("run_id", "r1"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session started"`)
	assert.Contains(t, string(data), `"run_id":"r1"`)
	assert.Empty(t, buf.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileOpenError(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
