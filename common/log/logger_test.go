package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixeld.log")
	l := NewFileLogger(path, 1, 1)
	l.Info("hello", "module", "test")
	l.Error("world")
	require.NoError(t, Close())

	bz, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(bz), "hello")
	require.Contains(t, string(bz), "module=test")
	require.Contains(t, string(bz), "world")
}

func TestWithLevel(t *testing.T) {
	_, err := WithLevel(NewConsoleLogger(), "info")
	require.NoError(t, err)

	_, err = WithLevel(NewConsoleLogger(), "loud")
	require.Error(t, err)
}
