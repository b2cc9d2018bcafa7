// Package metrics instruments the governance engine with Prometheus
// counters. A Noop implementation keeps tests and tooling free of a
// registry dependency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics captures admission and reaper outcomes.
type Metrics interface {
	IncAdmissions(environment, outcome string)
	IncDeletions(environment, outcome string)
	IncPolicyFindings(policyType, severity string)
	IncReaperSweeps(outcome string)
	ObserveCopyDuration(kind string, seconds float64)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncAdmissions(string, string)        {}
func (Noop) IncDeletions(string, string)         {}
func (Noop) IncPolicyFindings(string, string)    {}
func (Noop) IncReaperSweeps(string)              {}
func (Noop) ObserveCopyDuration(string, float64) {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	admissions     *prometheus.CounterVec
	deletions      *prometheus.CounterVec
	policyFindings *prometheus.CounterVec
	reaperSweeps   *prometheus.CounterVec
	copyDuration   *prometheus.HistogramVec
}

func NewProm(namespace string) *Prom {
	return &Prom{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Clone admission decisions by environment and outcome.",
		}, []string{"environment", "outcome"}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Clone deletions by environment and outcome.",
		}, []string{"environment", "outcome"}),
		policyFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_findings_total",
			Help:      "Policy findings by policy type and severity.",
		}, []string{"policy_type", "severity"}),
		reaperSweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaper_sweeps_total",
			Help:      "Expiration reaper sweeps by outcome.",
		}, []string{"outcome"}),
		copyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "copy_duration_seconds",
			Help:      "Duration of data-platform copy operations.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
	}
}

// Register registers all collectors on the given registerer.
func (p *Prom) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		p.admissions, p.deletions, p.policyFindings, p.reaperSweeps, p.copyDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prom) IncAdmissions(environment, outcome string) {
	p.admissions.WithLabelValues(environment, outcome).Inc()
}

func (p *Prom) IncDeletions(environment, outcome string) {
	p.deletions.WithLabelValues(environment, outcome).Inc()
}

func (p *Prom) IncPolicyFindings(policyType, severity string) {
	p.policyFindings.WithLabelValues(policyType, severity).Inc()
}

func (p *Prom) IncReaperSweeps(outcome string) {
	p.reaperSweeps.WithLabelValues(outcome).Inc()
}

func (p *Prom) ObserveCopyDuration(kind string, seconds float64) {
	p.copyDuration.WithLabelValues(kind).Observe(seconds)
}
