package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/veranemoloko/downloadtask/internal/download"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloadtask_tasks_created_total",
		Help: "Total number of tasks created",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloadtask_tasks_completed_total",
		Help: "Total number of tasks whose downloads all succeeded",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloadtask_tasks_failed_total",
		Help: "Total number of tasks with at least one failed download",
	})

	DownloadsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "downloadtask_downloads_active",
		Help: "Number of downloads currently running",
	})

	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "downloadtask_downloads_total",
		Help: "Total number of finished downloads by outcome",
	}, []string{"outcome"})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "downloadtask_download_duration_seconds",
		Help:    "Download duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloadtask_download_bytes_total",
		Help: "Total bytes written to disk",
	})
)

// ObserveDownload records a finished download.
func ObserveDownload(res download.Result, elapsed time.Duration) {
	DownloadsTotal.WithLabelValues(res.Outcome.String()).Inc()
	DownloadBytes.Add(float64(res.BytesWritten))
	if res.Outcome == download.OutcomeSuccess {
		DownloadDuration.Observe(elapsed.Seconds())
	}
}
