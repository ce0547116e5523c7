// Package service orchestrates extraction, classification, parsing and
// validation of uploaded agricultural data files.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/analyzer"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/classifier"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/extractor"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/quality"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/records"
	"github.com/FACorreiaa/agro-ingest/pkg/storage"
)

const tracerName = "github.com/FACorreiaa/agro-ingest/internal/domain/ingest/service"

// IngestService turns uploaded files into typed records.
type IngestService struct {
	classifier  *classifier.Classifier
	parser      *records.Parser
	analyzer    *analyzer.Analyzer
	validator   *quality.Validator
	metrics     *Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
	maxFileSize int64
	now         func() time.Time
}

// NewIngestService creates a new ingest service
func NewIngestService(logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IngestService{
		classifier: classifier.New(),
		parser:     records.New(logger),
		analyzer:   analyzer.New(logger),
		validator:  quality.New(nil),
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
		now:        time.Now,
	}
}

// WithReference validates districts against ref instead of the embedded list.
func (s *IngestService) WithReference(ref *normalizer.Reference) *IngestService {
	s.validator = quality.New(ref)
	return s
}

// WithMetrics records parse metrics
func (s *IngestService) WithMetrics(m *Metrics) *IngestService {
	s.metrics = m
	return s
}

// WithTracer replaces the global tracer
func (s *IngestService) WithTracer(t trace.Tracer) *IngestService {
	s.tracer = t
	return s
}

// WithMaxFileSize rejects inputs larger than n bytes. Zero disables the limit.
func (s *IngestService) WithMaxFileSize(n int64) *IngestService {
	s.maxFileSize = n
	return s
}

// WithAnalyzerWorkers bounds concurrent sheet analysis
func (s *IngestService) WithAnalyzerWorkers(n int) *IngestService {
	s.analyzer = analyzer.New(s.logger, analyzer.WithWorkers(n))
	return s
}

// WithClock fixes the time source for ids and timestamps
func (s *IngestService) WithClock(now func() time.Time) *IngestService {
	s.now = now
	s.parser = records.New(s.logger, records.WithClock(now))
	return s
}

// Parse runs the whole pipeline over one file. Callers get either a result
// or a single error, never both.
func (s *IngestService) Parse(ctx context.Context, in Input) (res *ParseResult, err error) {
	ctx, span := s.tracer.Start(ctx, "ingest.Parse", trace.WithAttributes(
		attribute.String("ingest.filename", in.Filename),
		attribute.String("ingest.file_type", string(in.FileType)),
		attribute.Int("ingest.size", len(in.Data)),
	))
	defer span.End()

	start := time.Now()
	ct := ingest.Unknown
	defer func() {
		if res != nil {
			ct = res.ContentType
		}
		s.metrics.observe(in.FileType, ct, res, err, time.Since(start))
		span.SetAttributes(attribute.String("ingest.content_type", string(ct)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn("parse failed",
				slog.String("filename", in.Filename),
				slog.String("content_type", string(ct)),
				slog.Any("error", err),
			)
			return
		}
		span.SetAttributes(attribute.Int("ingest.record_count", len(res.Records)))
		s.logger.Info("file parsed",
			slog.String("filename", in.Filename),
			slog.String("content_type", string(ct)),
			slog.Int("records", len(res.Records)),
			slog.Int("quality", res.Metadata.DataQuality.Quality),
			slog.Duration("elapsed", time.Since(start)),
		)
	}()

	if len(in.Data) == 0 {
		return nil, ingest.NewFormatError("file is empty", nil)
	}
	if s.maxFileSize > 0 && int64(len(in.Data)) > s.maxFileSize {
		return nil, ingest.NewFormatError(fmt.Sprintf("file is larger than %d bytes", s.maxFileSize), nil)
	}

	switch in.FileType {
	case ingest.FileTypeCSV:
		return s.parseDelimited(in, &ct)
	case ingest.FileTypeExcel:
		return s.parseWorkbook(ctx, in, &ct)
	}
	return nil, ingest.NewFormatError(fmt.Sprintf("unsupported file type %q", in.FileType), nil)
}

func (s *IngestService) parseDelimited(in Input, ct *ingest.ContentType) (*ParseResult, error) {
	tbl, err := extractor.ExtractDelimited(in.Data)
	if err != nil {
		return nil, err
	}

	cls := s.classifier.Classify(in.Filename, tbl.Headers)
	*ct = cls.Type
	if cls.Type == ingest.Unknown {
		return nil, &ingest.ClassificationError{Filename: in.Filename}
	}

	recs, err := s.parser.Parse(cls.Type, tbl.Rows)
	if err != nil {
		return nil, err
	}

	res := s.result(in, cls.Type, recs)
	res.Metadata.Fingerprint = tbl.Fingerprint
	return res, nil
}

func (s *IngestService) parseWorkbook(ctx context.Context, in Input, ct *ingest.ContentType) (*ParseResult, error) {
	f, err := extractor.OpenWorkbook(in.Data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cls := s.classifier.ClassifyFilename(in.Filename)
	if cls.Type == ingest.CommodityAdvisory {
		*ct = cls.Type
		return s.parseCommodity(ctx, in, f)
	}

	tbl, err := extractor.FirstSheet(f)
	if err != nil {
		return nil, err
	}
	cls = s.classifier.Classify(in.Filename, tbl.Headers)
	*ct = cls.Type
	switch cls.Type {
	case ingest.Unknown:
		return nil, &ingest.ClassificationError{Filename: in.Filename}
	case ingest.CommodityAdvisory:
		return s.parseCommodity(ctx, in, f)
	}

	recs, err := s.parser.Parse(cls.Type, tbl.Rows)
	if err != nil {
		return nil, err
	}

	res := s.result(in, cls.Type, recs)
	res.Metadata.Fingerprint = tbl.Fingerprint
	res.Metadata.SheetNames = []string{tbl.Sheet}
	return res, nil
}

func (s *IngestService) parseCommodity(ctx context.Context, in Input, f *excelize.File) (*ParseResult, error) {
	sheets, err := extractor.SheetsFromWorkbook(f)
	if err != nil {
		return nil, err
	}
	wb, err := s.analyzer.AnalyzeFile(ctx, f)
	if err != nil {
		return nil, err
	}

	out := s.parser.ParseCommodity(sheets, wb)

	res := s.result(in, ingest.CommodityAdvisory, out.Records)
	res.Calendar = &wb.Calendar
	res.Metadata.IsMultiSheet = true
	res.Metadata.SkippedRows = len(out.Skipped)
	for _, skipped := range out.Skipped {
		res.Metadata.Warnings = append(res.Metadata.Warnings, skipped.Error())
	}

	perSheet := make(map[string]int, len(sheets))
	for _, rec := range out.Records {
		if c, ok := rec.(ingest.CommodityAdvisoryRecord); ok {
			perSheet[c.Stage]++
		}
	}
	for i, sheet := range sheets {
		res.Metadata.SheetNames = append(res.Metadata.SheetNames, sheet.Name)
		sum := SheetSummary{Name: sheet.Name, Rows: len(sheet.Rows), Records: perSheet[sheet.Name]}
		if i < len(wb.Sheets) {
			a := wb.Sheets[i]
			sum.ActivityColumn = a.Structure.ActivityColumn
			sum.TimelineRow = a.Structure.TimelineRow
			sum.TimelineKind = a.Timeline.Kind
			sum.Activities = len(a.Activities)
			for _, p := range a.ColorPatterns {
				sum.Colors = append(sum.Colors, p.Color)
			}
		}
		res.Sheets = append(res.Sheets, sum)
	}
	return res, nil
}

func (s *IngestService) result(in Input, ct ingest.ContentType, recs []ingest.Record) *ParseResult {
	if recs == nil {
		recs = []ingest.Record{}
	}
	return &ParseResult{
		ContentType: ct,
		Records:     recs,
		Metadata: Metadata{
			OriginalName: in.Filename,
			RecordCount:  len(recs),
			ParsedAt:     s.now().UTC().Format(time.RFC3339),
			DataQuality:  s.validator.Validate(ct, recs),
			FileType:     in.FileType,
		},
	}
}

// ParseFile reads a local file and parses it. An empty fileType is taken
// from the extension; an empty originalName from the path.
func (s *IngestService) ParseFile(ctx context.Context, path string, fileType ingest.FileType, originalName string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ingest.FileAccessError{Path: path, Err: err}
	}
	if originalName == "" {
		originalName = filepath.Base(path)
	}
	if fileType == "" {
		fileType = DetectFileType(originalName)
	}
	return s.Parse(ctx, Input{Data: data, FileType: fileType, Filename: originalName})
}

// ParseStored downloads a stored file and parses it.
func (s *IngestService) ParseStored(ctx context.Context, store storage.Storage, sourceID string, fileID uuid.UUID) (*ParseResult, error) {
	path := sourceID + "/" + fileID.String()
	rc, info, err := store.Download(ctx, sourceID, fileID)
	if err != nil {
		return nil, &ingest.FileAccessError{Path: path, Err: err}
	}
	defer rc.Close()

	r := io.Reader(rc)
	if s.maxFileSize > 0 {
		r = io.LimitReader(rc, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ingest.FileAccessError{Path: path, Err: err}
	}

	return s.Parse(ctx, Input{Data: data, FileType: DetectFileType(info.Name), Filename: info.Name})
}

// DetectFileType maps a filename extension to a file type, or "" when unknown.
func DetectFileType(name string) ingest.FileType {
	ft, _ := ingest.ParseFileType(filepath.Ext(name))
	return ft
}
