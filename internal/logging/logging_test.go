package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	quiet, err := New(false)
	require.NoError(t, err)
	require.False(t, quiet.Core().Enabled(zapcore.DebugLevel))
	require.True(t, quiet.Core().Enabled(zapcore.InfoLevel))

	verbose, err := New(true)
	require.NoError(t, err)
	require.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func TestNewFile_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.log")
	logger, err := NewFile(false, path)
	require.NoError(t, err)

	logger.Info("Backend started on port 8512", zap.Int("port", 8512))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	require.Contains(t, line, `"msg":"Backend started on port 8512"`)
	require.Contains(t, line, `"logger":"foldline"`)
	require.Contains(t, line, `"port":8512`)
}

func TestNewFile_BadPath(t *testing.T) {
	_, err := NewFile(false, filepath.Join(t.TempDir(), "missing", "dir", "shell.log"))
	require.Error(t, err)
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	require.Same(t, l, OrNop(l))
}
