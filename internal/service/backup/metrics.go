package backup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cowrite.backup")

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cowrite_backup_exports_total",
		Help: "Project exports by result.",
	}, []string{"result"})

	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cowrite_backup_imports_total",
		Help: "Project imports by result.",
	}, []string{"result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cowrite_backup_duration_seconds",
		Help:    "Export and import latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	mediaSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cowrite_backup_media_skipped_total",
		Help: "Media files left out of an export because their bytes could not be read.",
	})

	droppedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cowrite_backup_dropped_records_total",
		Help: "Archive records dropped on import because a required reference did not resolve.",
	}, []string{"entity"})

	compensatedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cowrite_backup_compensated_files_total",
		Help: "Media files removed after a failed import.",
	})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
