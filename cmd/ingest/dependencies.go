package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/analyzer"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/service"
	"github.com/FACorreiaa/agro-ingest/pkg/config"
	"github.com/FACorreiaa/agro-ingest/pkg/cron"
	"github.com/FACorreiaa/agro-ingest/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry  *prometheus.Registry
	Metrics   *service.Metrics
	Reference *normalizer.Reference

	IngestService *service.IngestService
	Analyzer      *analyzer.Analyzer
	FileStorage   storage.Storage
	Scheduler     *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	d := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := d.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to init observability: %w", err)
	}

	if err := d.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")
	return d, nil
}

func (d *Dependencies) initObservability() error {
	d.Registry = prometheus.NewRegistry()
	if d.Config.Observability.MetricsEnabled {
		d.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.Metrics = service.NewMetrics(d.Registry)
	}
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	ref, err := normalizer.LoadReferenceFile(d.Config.Ingest.ReferencePath)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	d.Reference = ref

	d.IngestService = service.NewIngestService(d.Logger).
		WithReference(ref).
		WithMaxFileSize(d.Config.Ingest.MaxFileSize).
		WithAnalyzerWorkers(d.Config.Ingest.AnalyzerWorkers)
	if d.Metrics != nil {
		d.IngestService.WithMetrics(d.Metrics)
	}

	d.Analyzer = analyzer.New(d.Logger, analyzer.WithWorkers(d.Config.Ingest.AnalyzerWorkers))

	fileStorage, err := storage.New(&storage.Config{LocalPath: d.Config.Storage.LocalPath})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.Scheduler = cron.NewScheduler(d.FileStorage, d.IngestService, cron.SweepConfig{
		Schedule:        d.Config.Watch.Schedule,
		SourceID:        d.Config.Watch.SourceID,
		OutputDir:       d.Config.Watch.OutputDir,
		DeleteProcessed: d.Config.Watch.DeleteProcessed,
	}, d.Logger)

	d.Logger.Debug("services initialized")
	return nil
}
