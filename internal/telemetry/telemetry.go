// ABOUTME: Process-local Prometheus metrics for score evaluations and retention.
// ABOUTME: Uses a private registry so nothing leaks into the global default gatherer.
package telemetry

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/harperreed/caff/internal/models"
)

const namespace = "caff"

// Outcome labels.
const (
	OutcomeScored   = "scored"
	OutcomeFailSafe = "fail_safe"
)

// Recorder collects engine metrics. A nil *Recorder is a valid no-op.
type Recorder struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	pruned      prometheus.Counter
}

// NewRecorder registers the metric set on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of score evaluations.",
			},
			[]string{"kind", "outcome"},
		),
		scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score",
				Help:      "Distribution of computed scores.",
				Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"kind"},
		),
		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drinks_pruned_total",
				Help:      "Total number of drink events removed by retention.",
			},
		),
	}
	r.registry.MustRegister(r.evaluations, r.scores, r.pruned)
	return r
}

// Observe records one score result.
func (r *Recorder) Observe(res *models.ScoreResult) {
	if r == nil || res == nil {
		return
	}
	outcome := OutcomeScored
	if res.FailSafe {
		outcome = OutcomeFailSafe
	}
	r.evaluations.WithLabelValues(string(res.Kind), outcome).Inc()
	if !res.FailSafe {
		r.scores.WithLabelValues(string(res.Kind)).Observe(res.Score)
	}
}

// ObservePrune records drink events removed by retention.
func (r *Recorder) ObservePrune(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.pruned.Add(float64(n))
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Stats is a flattened view of the current metric values.
type Stats struct {
	Evaluations map[string]float64 `json:"evaluations"`
	ScoreCount  map[string]uint64  `json:"score_count"`
	ScoreMean   map[string]float64 `json:"score_mean"`
	Pruned      float64            `json:"pruned"`
}

// Snapshot gathers the registry into Stats. Evaluation keys are "kind/outcome".
func (r *Recorder) Snapshot() (Stats, error) {
	stats := Stats{
		Evaluations: map[string]float64{},
		ScoreCount:  map[string]uint64{},
		ScoreMean:   map[string]float64{},
	}
	if r == nil {
		return stats, nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return stats, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_evaluations_total":
			for _, m := range mf.GetMetric() {
				key := label(m, "kind") + "/" + label(m, "outcome")
				stats.Evaluations[key] = m.GetCounter().GetValue()
			}
		case namespace + "_score":
			for _, m := range mf.GetMetric() {
				kind := label(m, "kind")
				h := m.GetHistogram()
				stats.ScoreCount[kind] = h.GetSampleCount()
				if h.GetSampleCount() > 0 {
					stats.ScoreMean[kind] = h.GetSampleSum() / float64(h.GetSampleCount())
				}
			}
		case namespace + "_drinks_pruned_total":
			for _, m := range mf.GetMetric() {
				stats.Pruned += m.GetCounter().GetValue()
			}
		}
	}
	return stats, nil
}

// Text renders the registry in the Prometheus text exposition format.
func (r *Recorder) Text() (string, error) {
	if r == nil {
		return "", nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("encode metrics: %w", err)
		}
	}
	return buf.String(), nil
}

func label(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
