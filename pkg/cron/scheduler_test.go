package cron

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/ingesttest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/service"
	"github.com/FACorreiaa/agro-ingest/pkg/storage"
)

func newSweeper(t *testing.T, deleteProcessed bool) (*Scheduler, *storage.LocalStorage, string) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "parsed")
	logger := slog.New(slog.DiscardHandler)
	s := NewScheduler(store, service.NewIngestService(logger), SweepConfig{
		Schedule:        "@every 1h",
		SourceID:        "inbox",
		OutputDir:       out,
		DeleteProcessed: deleteProcessed,
	}, logger)
	return s, store, out
}

func upload(t *testing.T, store storage.Storage, name string, data []byte) *storage.FileInfo {
	t.Helper()
	info, err := store.Upload(context.Background(), "inbox", name, "", bytes.NewReader(data))
	require.NoError(t, err)
	return info
}

func TestScheduler_Sweep(t *testing.T) {
	ctx := context.Background()
	s, store, out := newSweeper(t, false)

	good := upload(t, store, "crop_calendar.csv", ingesttest.Delimited(",",
		[]string{"District", "Crop", "PlantingStart"},
		[]string{"Tolon", "Maize", "May"},
	))
	bad := upload(t, store, "notes.csv", ingesttest.Delimited(",",
		[]string{"Name", "Value"},
		[]string{"a", "1"},
	))

	stats, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepStats{Parsed: 1, Failed: 1}, stats)

	data, err := os.ReadFile(ResultPath(out, good))
	require.NoError(t, err)
	var res struct {
		ContentType string            `json:"contentType"`
		Records     []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "crop_calendar", res.ContentType)
	assert.Len(t, res.Records, 1)

	assert.FileExists(t, failedPath(ResultPath(out, bad)))

	t.Run("second sweep skips finished files", func(t *testing.T) {
		stats, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, SweepStats{Skipped: 2}, stats)
	})
}

func TestScheduler_DeleteProcessed(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newSweeper(t, true)

	upload(t, store, "poultry_calendar.csv", ingesttest.Delimited(",",
		[]string{"District", "Activity", "Weeks"},
		[]string{"Keta", "Brooding", "1-3"},
	))

	stats, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Parsed)

	files, err := store.List(ctx, "inbox")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScheduler_StartStop(t *testing.T) {
	s, _, out := newSweeper(t, false)
	require.NoError(t, s.Start())
	<-s.Stop().Done()
	assert.DirExists(t, out)

	s.cfg.Schedule = "not a schedule"
	assert.Error(t, s.Start())
}
