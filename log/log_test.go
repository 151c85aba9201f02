package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutputAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonal.log")
	require.NoError(t, SetOutput(path))
	require.NoError(t, SetLevel("warn"))
	Info("Test:hidden")
	Warn("Test:shown", zap.Int("pos", 3))
	require.NoError(t, Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Test:hidden")
	assert.Contains(t, string(raw), "Test:shown")
	assert.Contains(t, string(raw), "pos")

	Disable()
	Error("Test:disabled")
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Test:disabled")

	assert.Error(t, SetLevel("loud"))
}
