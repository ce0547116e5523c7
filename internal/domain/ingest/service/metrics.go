package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

// Parse outcome labels.
const (
	statusOK             = "ok"
	statusFormat         = "format_error"
	statusClassification = "classification_error"
	statusRowValidation  = "row_error"
	statusFileAccess     = "file_access_error"
	statusError          = "error"
)

// Metrics holds the ingestion collectors.
type Metrics struct {
	parses   *prometheus.CounterVec
	records  *prometheus.CounterVec
	skipped  prometheus.Counter
	quality  *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "ingest",
			Name:      "parses_total",
			Help:      "Parsed files by content type and outcome.",
		}, []string{"content_type", "status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Records emitted by content type.",
		}, []string{"content_type"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "ingest",
			Name:      "skipped_rows_total",
			Help:      "Commodity advisory rows skipped for missing fields.",
		}),
		quality: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agro",
			Subsystem: "ingest",
			Name:      "data_quality_percent",
			Help:      "Data quality score of parsed files.",
			Buckets:   []float64{10, 25, 50, 75, 90, 95, 99, 100},
		}, []string{"content_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agro",
			Subsystem: "ingest",
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing a file.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"file_type"}),
	}
	reg.MustRegister(m.parses, m.records, m.skipped, m.quality, m.duration)
	return m
}

func (m *Metrics) observe(fileType ingest.FileType, ct ingest.ContentType, res *ParseResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(fileType)).Observe(elapsed.Seconds())
	m.parses.WithLabelValues(string(ct), status(err)).Inc()
	if err != nil || res == nil {
		return
	}
	m.records.WithLabelValues(string(ct)).Add(float64(len(res.Records)))
	m.skipped.Add(float64(res.Metadata.SkippedRows))
	m.quality.WithLabelValues(string(ct)).Observe(float64(res.Metadata.DataQuality.Quality))
}

func status(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ingest.ErrFormat):
		return statusFormat
	case errors.Is(err, ingest.ErrClassification):
		return statusClassification
	case errors.Is(err, ingest.ErrRowValidation):
		return statusRowValidation
	case errors.Is(err, ingest.ErrFileAccess):
		return statusFileAccess
	}
	return statusError
}
