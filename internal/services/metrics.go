package services

import (
	"client-feedback-admin/internal/importer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ImportMetrics exposes import activity to Prometheus
type ImportMetrics struct {
	sessions *prometheus.CounterVec
	records  *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on registry
func NewImportMetrics(registry prometheus.Registerer) *ImportMetrics {
	factory := promauto.With(registry)

	return &ImportMetrics{
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "client_import_sessions_total",
			Help: "Import sessions by final state",
		}, []string{"state"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "client_import_records_total",
			Help: "Imported client records by outcome",
		}, []string{"action"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "client_import_rejected_files_total",
			Help: "Uploaded files rejected before staging",
		}, []string{"reason"}),
	}
}

// SessionStaged counts a classified upload
func (m *ImportMetrics) SessionStaged() {
	m.sessions.WithLabelValues(string(StateClassified)).Inc()
}

// SessionCancelled counts a discarded upload
func (m *ImportMetrics) SessionCancelled() {
	m.sessions.WithLabelValues(string(StateCancelled)).Inc()
}

// FileRejected counts a file-level failure
func (m *ImportMetrics) FileRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// ObserveResult counts an applied batch
func (m *ImportMetrics) ObserveResult(result *importer.Result) {
	m.sessions.WithLabelValues(string(StateApplied)).Inc()
	m.records.WithLabelValues(string(importer.ActionCreated)).Add(float64(result.Created))
	m.records.WithLabelValues(string(importer.ActionUpdated)).Add(float64(result.Updated))
	m.records.WithLabelValues(string(importer.ActionSkipped)).Add(float64(result.Skipped))
	m.records.WithLabelValues(string(importer.ActionRemoved)).Add(float64(result.Removed))
	m.records.WithLabelValues(string(importer.ActionFailed)).Add(float64(result.Failed))
	m.records.WithLabelValues("duplicate").Add(float64(result.DuplicatesIgnored))
}
