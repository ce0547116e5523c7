package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/classifier"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/extractor"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/records"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/service"
)

// ============================================================================
// parse
// ============================================================================

type parseOptions struct {
	fileType   string
	name       string
	format     string
	outputPath string
	pretty     bool
}

func (c *cli) parseCmd() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Classify and parse a file into typed records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.fileType, "type", "", "File type: csv or excel (default: from extension)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Original filename used for classification (default: base name of FILE)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func (c *cli) runParse(cmd *cobra.Command, path string, opts *parseOptions) error {
	var fileType ingest.FileType
	if opts.fileType != "" {
		ft, ok := ingest.ParseFileType(opts.fileType)
		if !ok {
			return fmt.Errorf("invalid type: %s (must be csv or excel)", opts.fileType)
		}
		fileType = ft
	}

	res, err := c.deps.IngestService.ParseFile(cmd.Context(), path, fileType, opts.name)
	if err != nil {
		return err
	}

	var out []byte
	switch opts.format {
	case "json":
		out, err = marshalJSON(res, opts.pretty)
	case "csv":
		out, err = records.MarshalCSV(res.Records)
	default:
		return fmt.Errorf("invalid format: %s (must be json or csv)", opts.format)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	return writeOutput(cmd.OutOrStdout(), opts.outputPath, out)
}

// ============================================================================
// classify
// ============================================================================

func (c *cli) classifyCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Report the content type of a file without parsing its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return &ingest.FileAccessError{Path: path, Err: err}
			}

			headers, err := headerRow(data, service.DetectFileType(path))
			if err != nil {
				return err
			}

			result := struct {
				File    string   `json:"file"`
				Headers []string `json:"headers"`
				classifier.Classification
			}{
				File:           filepath.Base(path),
				Headers:        headers,
				Classification: classifier.Classify(filepath.Base(path), headers),
			}
			out, err := marshalJSON(result, pretty)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "", out)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func headerRow(data []byte, fileType ingest.FileType) ([]string, error) {
	switch fileType {
	case ingest.FileTypeCSV:
		table, err := extractor.ExtractDelimited(data)
		if err != nil {
			return nil, err
		}
		return table.Headers, nil
	case ingest.FileTypeExcel:
		f, err := extractor.OpenWorkbook(data)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		table, err := extractor.FirstSheet(f)
		if err != nil {
			return nil, err
		}
		return table.Headers, nil
	}
	return nil, ingest.NewFormatError("unsupported file type", nil)
}

// ============================================================================
// analyze
// ============================================================================

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		pretty     bool
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Describe the layout, activities and colors of every sheet of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return &ingest.FileAccessError{Path: args[0], Err: err}
			}

			wb, err := c.deps.Analyzer.Analyze(cmd.Context(), data)
			if err != nil {
				return err
			}

			out, err := marshalJSON(wb, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, out)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// ============================================================================
// upload
// ============================================================================

func (c *cli) uploadCmd() *cobra.Command {
	var sourceID string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Store a file in a source inbox for the watch sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourceID == "" {
				sourceID = c.deps.Config.Watch.SourceID
			}

			f, err := os.Open(args[0])
			if err != nil {
				return &ingest.FileAccessError{Path: args[0], Err: err}
			}
			defer f.Close()

			info, err := c.deps.FileStorage.Upload(cmd.Context(), sourceID, filepath.Base(args[0]), "", f)
			if err != nil {
				return fmt.Errorf("failed to upload file: %w", err)
			}

			c.deps.Logger.Info("file uploaded",
				slog.String("file_id", info.ID.String()),
				slog.String("source", sourceID),
				slog.Int64("size", info.Size),
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), info.ID.String())
			return err
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "Source inbox (default: WATCH_SOURCE_ID)")
	return cmd
}

// ============================================================================
// watch
// ============================================================================

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sweep the source inbox on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx)
		},
	}
}

func (c *cli) runWatch(ctx context.Context) error {
	d := c.deps

	if _, err := d.Scheduler.Sweep(ctx); err != nil {
		return fmt.Errorf("initial sweep failed: %w", err)
	}
	if err := d.Scheduler.Start(); err != nil {
		return err
	}

	var server *http.Server
	if d.Config.Observability.MetricsEnabled {
		server = &http.Server{
			Addr:              d.Config.Observability.MetricsAddr,
			Handler:           newMetricsRouter(d),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			d.Logger.Info("metrics server starting", slog.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.Logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()
	d.Logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			d.Logger.Error("shutdown error", slog.Any("error", err))
		}
	}

	select {
	case <-d.Scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		d.Logger.Warn("sweep did not finish in time")
	}
	return nil
}

// newMetricsRouter serves /metrics from the dependency registry and a
// /healthz probe.
func newMetricsRouter(d *Dependencies) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// ============================================================================
// output
// ============================================================================

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := stdout.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(stdout)
	return err
}
