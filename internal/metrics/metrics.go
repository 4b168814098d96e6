package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soaringjerry/findrisc/internal/services"
)

// Metrics records assessment outcomes on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	assessments       *prometheus.CounterVec
	scores            prometheus.Histogram
	narrativeFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "findrisc",
			Name:      "assessments_total",
			Help:      "Stored assessments by risk tier.",
		}, []string{"tier"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "findrisc",
			Name:      "score",
			Help:      "Distribution of FINDRISC scores.",
			Buckets:   []float64{6, 11, 14, 20, 26},
		}),
		narrativeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "findrisc",
			Name:      "narrative_failures_total",
			Help:      "Assessments stored without narrative commentary.",
		}),
	}
	reg.MustRegister(
		m.assessments,
		m.scores,
		m.narrativeFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) AssessmentRecorded(r services.RiskResult) {
	m.assessments.WithLabelValues(r.Tier.String()).Inc()
	m.scores.Observe(float64(r.Score))
}

func (m *Metrics) NarrativeFailed() { m.narrativeFailures.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ services.Observer = (*Metrics)(nil)
