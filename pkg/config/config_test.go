package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, int64(20<<20), cfg.Ingest.MaxFileSize)
	assert.GreaterOrEqual(t, cfg.Ingest.AnalyzerWorkers, 1)
	assert.Empty(t, cfg.Ingest.ReferencePath)
	assert.Equal(t, "./uploads", cfg.Storage.LocalPath)
	assert.Equal(t, "*/5 * * * *", cfg.Watch.Schedule)
	assert.Equal(t, "inbox", cfg.Watch.SourceID)
	assert.False(t, cfg.Watch.DeleteProcessed)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("INGEST_MAX_FILE_SIZE", "1024")
	t.Setenv("INGEST_ANALYZER_WORKERS", "3")
	t.Setenv("WATCH_SCHEDULE", "@every 1m")
	t.Setenv("WATCH_DELETE_PROCESSED", "true")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(1024), cfg.Ingest.MaxFileSize)
	assert.Equal(t, 3, cfg.Ingest.AnalyzerWorkers)
	assert.Equal(t, "@every 1m", cfg.Watch.Schedule)
	assert.True(t, cfg.Watch.DeleteProcessed)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, msg string
	}{
		{"format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"size", "INGEST_MAX_FILE_SIZE", "-1", "INGEST_MAX_FILE_SIZE"},
		{"workers", "INGEST_ANALYZER_WORKERS", "0", "INGEST_ANALYZER_WORKERS"},
		{"schedule", "WATCH_SCHEDULE", "every tuesday", "WATCH_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
