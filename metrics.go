package tablesaf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. Attach one instance to the filter,
// sanitizer and firewall of a run so rejections and recoveries are visible
// without log scraping.
type Metrics struct {
	CandidatesAccepted     prometheus.Counter
	CandidatesRejected     *prometheus.CounterVec
	HallucinationsRejected prometheus.Counter
	TablesSanitized        prometheus.Counter
}

// NewMetrics registers the pipeline counters with reg. Pass
// prometheus.DefaultRegisterer for the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CandidatesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tablesaf_candidates_accepted_total",
			Help: "Extracted blocks that passed the candidate filter.",
		}),
		CandidatesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tablesaf_candidates_rejected_total",
			Help: "Extracted blocks rejected by the candidate filter, by reason.",
		}, []string{"reason"}),
		HallucinationsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "tablesaf_firewall_rejections_total",
			Help: "AI reconstructions rejected by the extraction firewall.",
		}),
		TablesSanitized: factory.NewCounter(prometheus.CounterOpts{
			Name: "tablesaf_tables_sanitized_total",
			Help: "Grids successfully sanitized into typed tables.",
		}),
	}
}
