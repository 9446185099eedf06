package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// datasetUploads counts dataset uploads by format and outcome
	datasetUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epl_dataset_uploads_total",
		Help: "Total dataset uploads by format and outcome",
	}, []string{"format", "status"})

	// datasetUploadBytes tracks the size of uploaded datasets
	datasetUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "epl_dataset_upload_bytes",
		Help:    "Size of uploaded datasets in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 9), // 1KiB to 64MiB
	})

	// exportsTotal counts downloads by kind
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epl_exports_total",
		Help: "Total report exports by kind",
	}, []string{"kind"})
)

// ObserveUpload records an upload attempt
func ObserveUpload(format string, size int64, err error) {
	status := "accepted"
	if err != nil {
		status = "rejected"
	}
	if format == "" {
		format = "unknown"
	}
	datasetUploads.WithLabelValues(format, status).Inc()
	if size > 0 {
		datasetUploadBytes.Observe(float64(size))
	}
}

// ObserveExport records a completed export
func ObserveExport(kind string) {
	exportsTotal.WithLabelValues(kind).Inc()
}
