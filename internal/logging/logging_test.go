package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_TogglesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, gate := New(&buf, false)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	gate.SetEnabled(true)
	logger.Info().Str("component", "refresh").Msg("visible")
	assert.Contains(t, buf.String(), `"message":"visible"`)
	assert.Contains(t, buf.String(), `"component":"refresh"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestOpen_File(t *testing.T) {
	t.Setenv(DebugEnv, "")
	dir := filepath.Join(t.TempDir(), "state")

	w, closeFn, err := Open(dir)
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, "cursorbar.log"))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
