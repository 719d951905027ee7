package crop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-run counters in a private registry so that repeated
// runs in one process (tests, library use) never collide.
type Metrics struct {
	registry *prometheus.Registry

	images        *prometheus.CounterVec
	patches       *prometheus.CounterVec
	annotations   *prometheus.CounterVec
	rejectedLines prometheus.Counter
	imageDuration prometheus.Histogram
}

// NewMetrics registers the crop metrics in a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		images: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tilecrop_images_total",
				Help: "Total number of source images by outcome",
			},
			[]string{"status"}, // status: processed, skipped, failed
		),
		patches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tilecrop_patches_total",
				Help: "Total number of grid cells by outcome",
			},
			[]string{"status"}, // status: written, skipped
		),
		annotations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tilecrop_annotations_total",
				Help: "Annotation/patch pairs by clipping outcome",
			},
			[]string{"status"}, // status: kept, dropped
		),
		rejectedLines: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tilecrop_label_lines_rejected_total",
				Help: "Total number of malformed or degenerate label lines",
			},
		),
		imageDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tilecrop_image_duration_seconds",
				Help:    "Time spent cropping one source image",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25, 50},
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile dumps all metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
