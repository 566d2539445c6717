package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kramify"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	registry    *prom.Registry
	documents   *prom.CounterVec
	constructs  *prom.CounterVec
	pruned      prom.Counter
	runDuration prom.Histogram
	runs        *prom.CounterVec
}

// NewPrometheusRecorder registers the kramify collectors, plus the Go and
// process collectors, on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	pr := &PrometheusRecorder{
		registry: prom.NewRegistry(),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed by outcome",
		}, []string{"outcome"}),
		constructs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "constructs_converted_total",
			Help:      "Links, images and callouts rewritten",
		}, []string{"kind"}),
		pruned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "index_lines_pruned_total",
			Help:      "Lines removed from the index document",
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of full conversion runs",
			Buckets:   prom.DefBuckets,
		}),
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Full conversion runs by result",
		}, []string{"result"}),
	}
	pr.registry.MustRegister(pr.documents, pr.constructs, pr.pruned, pr.runDuration, pr.runs)
	pr.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return pr
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) IncDocument(outcome string) {
	p.documents.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddConstructs(kind string, n int) {
	if n > 0 {
		p.constructs.WithLabelValues(kind).Add(float64(n))
	}
}

func (p *PrometheusRecorder) AddPrunedLines(n int) {
	if n > 0 {
		p.pruned.Add(float64(n))
	}
}

func (p *PrometheusRecorder) ObserveRun(d time.Duration, err error) {
	p.runDuration.Observe(d.Seconds())
	result := "success"
	if err != nil {
		result = "failed"
	}
	p.runs.WithLabelValues(result).Inc()
}
