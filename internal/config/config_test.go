package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "startup-analyst.db", cfg.Store.Path)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, int64(4096), cfg.LLM.MaxTokens)
	assert.InDelta(t, 2.0, cfg.LLM.RequestsPerSecond, 0.001)
	assert.Equal(t, 4, cfg.LLM.Burst)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, 12000, cfg.Analysis.MaxCorpusChars)
	assert.Equal(t, 120, cfg.Analysis.UnitTimeoutSecs)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.UnitTimeout())
	assert.Equal(t, "uploads", cfg.Analysis.UploadDir)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/analyst
llm:
  provider: gemini
  model: gemini-2.5-pro
analysis:
  unit_timeout_secs: 30
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/analyst", cfg.Store.DatabaseURL)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.Analysis.UnitTimeoutSecs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Defaults still apply for keys the file omits.
	assert.Equal(t, 12000, cfg.Analysis.MaxCorpusChars)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
