package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts member lifecycle operations.
type Metrics struct {
	MembersRegistered prometheus.Counter
	MembersDeleted    prometheus.Counter
	DocumentsUploaded *prometheus.CounterVec
	Exports           prometheus.Counter
}

// New registers all counters on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MembersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "socios_members_registered_total",
			Help: "Total number of members registered",
		}),
		MembersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "socios_members_deleted_total",
			Help: "Total number of members deleted together with their documents",
		}),
		DocumentsUploaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "socios_documents_uploaded_total",
			Help: "Total number of documents uploaded, by document type",
		}, []string{"doc_type"}),
		Exports: f.NewCounter(prometheus.CounterOpts{
			Name: "socios_exports_total",
			Help: "Total number of member CSV exports",
		}),
	}
}

// IncrementMembersRegistered records a successful member registration.
func (m *Metrics) IncrementMembersRegistered() {
	if m == nil {
		return
	}
	m.MembersRegistered.Inc()
}

// IncrementMembersDeleted records a successful cascade delete.
func (m *Metrics) IncrementMembersDeleted() {
	if m == nil {
		return
	}
	m.MembersDeleted.Inc()
}

// IncrementDocumentsUploaded records an upload of docType.
func (m *Metrics) IncrementDocumentsUploaded(docType string) {
	if m == nil {
		return
	}
	m.DocumentsUploaded.WithLabelValues(docType).Inc()
}

// IncrementExports records a CSV export.
func (m *Metrics) IncrementExports() {
	if m == nil {
		return
	}
	m.Exports.Inc()
}
