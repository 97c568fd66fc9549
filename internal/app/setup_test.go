package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cowrite/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Stdout(t *testing.T) {
	var out bytes.Buffer
	logger, closer, err := NewLogger(&config.Config{Environment: "dev"}, &out)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hello", "project_id", "p-1")
	assert.Contains(t, out.String(), `"msg":"hello"`)
	assert.Contains(t, out.String(), `"project_id":"p-1"`)
}

func TestNewLogger_ProdSkipsDebug(t *testing.T) {
	var out bytes.Buffer
	logger, _, err := NewLogger(&config.Config{Environment: "prod"}, &out)
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, out.String())
}

func TestNewLogger_MirrorsToFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	logger, closer, err := NewLogger(&config.Config{Environment: "prod", LogDir: dir, LogMaxFiles: 3}, &out)
	require.NoError(t, err)

	logger.Info("written twice")
	require.NoError(t, closer.Close())

	files, err := filepath.Glob(filepath.Join(dir, "cowrite-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, out.String(), "written twice")
}
