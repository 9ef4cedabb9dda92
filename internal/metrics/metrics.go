package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfbw",
			Name:      "conversions_total",
			Help:      "Total conversions by outcome (converted, copied, or error kind)",
		},
		[]string{"result"},
	)

	conversionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfbw",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of whole conversions",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	pagesTranscoded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfbw",
			Name:      "pages_transcoded_total",
			Help:      "Total pages rasterized and re-encoded",
		},
	)

	pageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfbw",
			Name:      "page_duration_seconds",
			Help:      "Duration of rasterize, enhance and encode per page",
			Buckets:   prometheus.DefBuckets,
		},
	)

	pageBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfbw",
			Name:      "page_jpeg_bytes",
			Help:      "Size of encoded page images",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 2, 10),
		},
	)

	verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfbw",
			Name:      "grayscale_verdicts_total",
			Help:      "Grayscale detector outcomes (grayscale, color, error)",
		},
		[]string{"verdict"},
	)

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// Init registers collectors.
func Init() {
	initOnce.Do(func() {
		registry.MustRegister(conversions, conversionDuration, pagesTranscoded, pageDuration, pageBytes, verdicts)
	})
}

// Registry returns the gatherer holding the conversion metrics.
func Registry() *prometheus.Registry { return registry }

// WriteTextfile writes the current metrics in text exposition format, for the
// node exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	return prometheus.WriteToTextfile(path, registry)
}

func ObserveConversion(result string, dur time.Duration) {
	conversions.WithLabelValues(result).Inc()
	conversionDuration.Observe(dur.Seconds())
}

func ObservePage(dur time.Duration, jpegBytes int) {
	pagesTranscoded.Inc()
	pageDuration.Observe(dur.Seconds())
	pageBytes.Observe(float64(jpegBytes))
}

func ObserveVerdict(verdict string) { verdicts.WithLabelValues(verdict).Inc() }
