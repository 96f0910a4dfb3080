// Why this file: ./internal/metrics/metrics.go
// Two MetricsSink implementations: a Prometheus registry sink for scraping
// and an OpenTelemetry sink for push-based export, both satisfying the
// narrow Record(event, labels, value) interface each fabric component
// declares for itself. Grounded on the teacher's TokenTracker/CostCalculator
// mutex-guarded map idiom (internal/llm/token_tracker.go), generalized from
// bespoke counters to a real metrics backend per the domain-stack wiring.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusSink records fabric events as Prometheus counters and
// histograms, lazily registering one pair per distinct event name.
type PrometheusSink struct {
	mu         sync.Mutex
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusSink builds a sink backed by registry. A nil registry uses
// prometheus.NewRegistry().
func NewPrometheusSink(registry *prometheus.Registry) *PrometheusSink {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &PrometheusSink{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry exposes the underlying registry for an HTTP scrape handler.
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}

// Record increments the event's counter by one and observes value in the
// event's histogram, creating both lazily on first use.
func (s *PrometheusSink) Record(event string, labels map[string]string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, values := splitLabels(labels)

	counter, ok := s.counters[event]
	if !ok {
		counter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fabric_" + sanitize(event) + "_total",
			Help: "Total occurrences of " + event,
		}, names)
		s.registry.MustRegister(counter)
		s.counters[event] = counter
	}
	counter.WithLabelValues(values...).Add(1)

	histogram, ok := s.histograms[event]
	if !ok {
		histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fabric_" + sanitize(event) + "_value",
			Help:    "Observed values for " + event,
			Buckets: prometheus.DefBuckets,
		}, names)
		s.registry.MustRegister(histogram)
		s.histograms[event] = histogram
	}
	histogram.WithLabelValues(values...).Observe(value)
}

func splitLabels(labels map[string]string) (names, values []string) {
	for k, v := range labels {
		names = append(names, k)
		values = append(values, v)
	}
	return names, values
}

func sanitize(event string) string {
	out := make([]rune, 0, len(event))
	for _, r := range event {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

// OTelSink records fabric events through an OpenTelemetry metric.Meter,
// for deployments exporting to a collector rather than scraping Prometheus
// directly.
type OTelSink struct {
	meter       metric.Meter
	mu          sync.Mutex
	instruments map[string]metric.Float64Counter
}

// NewOTelSink builds a sink backed by meter.
func NewOTelSink(meter metric.Meter) *OTelSink {
	return &OTelSink{meter: meter, instruments: make(map[string]metric.Float64Counter)}
}

// Record adds value to the event's counter instrument, attaching labels as
// attributes. Instrument creation errors are swallowed: metrics must never
// fail a request path.
func (s *OTelSink) Record(event string, labels map[string]string, value float64) {
	s.mu.Lock()
	instrument, ok := s.instruments[event]
	if !ok {
		created, err := s.meter.Float64Counter("fabric." + sanitize(event))
		if err != nil {
			s.mu.Unlock()
			return
		}
		instrument = created
		s.instruments[event] = instrument
	}
	s.mu.Unlock()

	attrs := toAttributes(labels)
	instrument.Add(context.Background(), value, metric.WithAttributes(attrs...))
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
