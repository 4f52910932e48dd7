package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNew_FileOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()

	log, styled, cleanup, err := NewWithTheme(&Config{
		Level:      "info",
		LogDir:     dir,
		FileOutput: true,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, styled)

	log.Info("visible everywhere")
	log.InfoContext(WithDetailed(context.Background()), "file only", "key", "value")
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, DefaultLogOutputName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible everywhere")
	assert.Contains(t, string(data), "file only")
	assert.Contains(t, string(data), `"timestamp"`)
}
