// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/service"
	"github.com/FACorreiaa/agro-ingest/pkg/storage"
)

// Parser is the part of the ingest service the sweeper needs.
type Parser interface {
	ParseStored(ctx context.Context, store storage.Storage, sourceID string, fileID uuid.UUID) (*service.ParseResult, error)
}

// SweepConfig configures the inbox sweep.
type SweepConfig struct {
	Schedule        string
	SourceID        string
	OutputDir       string
	DeleteProcessed bool
}

// SweepStats summarizes one sweep.
type SweepStats struct {
	Parsed  int
	Failed  int
	Skipped int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	store  storage.Storage
	parser Parser
	cfg    SweepConfig
	logger *slog.Logger

	mu sync.Mutex // one sweep at a time
}

// NewScheduler creates a new job scheduler.
func NewScheduler(store storage.Storage, parser Parser, cfg SweepConfig, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		store:  store,
		parser: parser,
		cfg:    cfg,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("inbox sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.cfg.Schedule),
		slog.String("source", s.cfg.SourceID),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Sweep parses every stored file of the source that has no result yet and
// writes each result to <output>/<file id>.json.
func (s *Scheduler) Sweep(ctx context.Context) (SweepStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats SweepStats
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := s.store.List(ctx, s.cfg.SourceID)
	if err != nil {
		return stats, fmt.Errorf("failed to list source %q: %w", s.cfg.SourceID, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		out := ResultPath(s.cfg.OutputDir, f)
		done, err := anyExists(out, failedPath(out))
		if err != nil {
			return stats, err
		}
		if done {
			stats.Skipped++
			continue
		}

		if err := s.process(ctx, f, out); err != nil {
			s.logger.Warn("failed to ingest stored file",
				slog.String("file_id", f.ID.String()),
				slog.String("name", f.Name),
				slog.Any("error", err),
			)
			stats.Failed++
			continue
		}
		stats.Parsed++
	}

	s.logger.Info("inbox sweep completed",
		slog.String("source", s.cfg.SourceID),
		slog.Int("parsed", stats.Parsed),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (s *Scheduler) process(ctx context.Context, f *storage.FileInfo, out string) error {
	res, err := s.parser.ParseStored(ctx, s.store, s.cfg.SourceID, f.ID)
	if err != nil {
		// A failure marker stops the file from being retried every sweep.
		if werr := writeJSON(failedPath(out), map[string]string{"name": f.Name, "error": err.Error()}); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	if err := writeJSON(out, res); err != nil {
		return err
	}

	s.logger.Debug("stored file ingested",
		slog.String("file_id", f.ID.String()),
		slog.String("content_type", string(res.ContentType)),
		slog.Int("records", len(res.Records)),
	)

	if s.cfg.DeleteProcessed {
		if err := s.store.Delete(ctx, s.cfg.SourceID, f.ID); err != nil {
			return fmt.Errorf("failed to delete processed file: %w", err)
		}
	}
	return nil
}

// ResultPath is where the sweep writes the result for f.
func ResultPath(dir string, f *storage.FileInfo) string {
	return filepath.Join(dir, f.ID.String()+".json")
}

func anyExists(paths ...string) (bool, error) {
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}
	return false, nil
}

func failedPath(out string) string {
	return strings.TrimSuffix(out, ".json") + ".error.json"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
