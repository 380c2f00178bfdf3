package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector interface {
	CommandSent(kind string)
	ResultReceived()
	TransportFailure(op string)
	Offloaded(duration time.Duration)
	Evaluated(duration time.Duration)
}

type collector struct {
	commands    *prometheus.CounterVec
	results     prometheus.Counter
	failures    *prometheus.CounterVec
	offloads    prometheus.Histogram
	evaluations prometheus.Histogram
}

// NewCollector registers the treeval metrics on reg.
func NewCollector(reg prometheus.Registerer) Collector {
	factory := promauto.With(reg)
	return &collector{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treeval_commands_sent_total",
			Help: "Command words handed to the accelerator by kind",
		}, []string{"kind"}),
		results: factory.NewCounter(prometheus.CounterOpts{
			Name: "treeval_results_received_total",
			Help: "Result words read back from the accelerator",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treeval_transport_failures_total",
			Help: "Failed transport operations by operation",
		}, []string{"op"}),
		offloads: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "treeval_offload_duration_seconds",
			Help:    "Time from the first command word to the decoded result",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
		evaluations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "treeval_evaluation_duration_seconds",
			Help:    "Time spent evaluating a tree",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1us to ~260ms
		}),
	}
}

func (m *collector) CommandSent(kind string) {
	m.commands.WithLabelValues(kind).Inc()
}

func (m *collector) ResultReceived() {
	m.results.Inc()
}

func (m *collector) TransportFailure(op string) {
	m.failures.WithLabelValues(op).Inc()
}

func (m *collector) Offloaded(duration time.Duration) {
	m.offloads.Observe(duration.Seconds())
}

func (m *collector) Evaluated(duration time.Duration) {
	m.evaluations.Observe(duration.Seconds())
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) CommandSent(kind string)          {}
func (m *dummyCollector) ResultReceived()                  {}
func (m *dummyCollector) TransportFailure(op string)       {}
func (m *dummyCollector) Offloaded(duration time.Duration) {}
func (m *dummyCollector) Evaluated(duration time.Duration) {}
