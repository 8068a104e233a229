// Package metrics exposes Prometheus counters and histograms for archive
// production, schedule decisions, and restore/delete outcomes. Grounded
// on daemon/metrics/metrics.go's promauto.NewCounterVec/NewHistogramVec
// style and its Record* helper functions, renamed from a VM export
// domain to this repository's backup-profile domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArchivesTotal tracks archive production outcomes by result.
	ArchivesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_archives_total",
			Help: "Total number of archive production attempts by outcome",
		},
		[]string{"outcome"}, // ok, target_unavailable, collision, fatal
	)

	// ArchiveDuration tracks how long archive production takes.
	ArchiveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backupsdk_archive_duration_seconds",
			Help:    "Archive production duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"outcome"},
	)

	// ArchiveBytes tracks the total bytes written into archives.
	ArchiveBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_archive_bytes_total",
			Help: "Total bytes streamed into archives",
		},
		[]string{"profile_id"},
	)

	// ArchiveFileErrors tracks per-file errors encountered during
	// archive production; these don't abort the archive.
	ArchiveFileErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_archive_file_errors_total",
			Help: "Total per-file errors encountered while producing archives",
		},
		[]string{"profile_id"},
	)

	// ScheduleDecisions tracks the controller's run-now/advance
	// decision table outcomes.
	ScheduleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_schedule_decisions_total",
			Help: "Total scheduling decisions by (advance_next, run_now)",
		},
		[]string{"advance_next", "run_now"},
	)

	// SchedulerErrors tracks OS scheduler adapter failures.
	SchedulerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_scheduler_errors_total",
			Help: "Total OS scheduler adapter errors",
		},
		[]string{"operation"}, // schedule, unschedule
	)

	// RestoresTotal tracks restore outcomes.
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_restores_total",
			Help: "Total restore attempts by outcome",
		},
		[]string{"outcome"}, // restored, noop, error
	)

	// DeletesTotal tracks delete-coordinator outcomes.
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_deletes_total",
			Help: "Total profile delete attempts by outcome",
		},
		[]string{"outcome"}, // ok, compensated, double_failure
	)

	// APIRequests tracks HTTP control plane requests.
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backupsdk_api_requests_total",
			Help: "Total number of HTTP control plane requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordArchive records one archive production attempt.
func RecordArchive(outcome string, durationSeconds float64) {
	ArchivesTotal.WithLabelValues(outcome).Inc()
	ArchiveDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordScheduleDecision records one controller decision.
func RecordScheduleDecision(advanceNext, runNow bool) {
	ScheduleDecisions.WithLabelValues(boolLabel(advanceNext), boolLabel(runNow)).Inc()
}

// RecordSchedulerError records one OS adapter failure.
func RecordSchedulerError(operation string) {
	SchedulerErrors.WithLabelValues(operation).Inc()
}

// RecordRestore records one restore attempt.
func RecordRestore(outcome string) {
	RestoresTotal.WithLabelValues(outcome).Inc()
}

// RecordDelete records one delete-coordinator attempt.
func RecordDelete(outcome string) {
	DeletesTotal.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records one HTTP control plane request.
func RecordAPIRequest(method, route, status string) {
	APIRequests.WithLabelValues(method, route, status).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
