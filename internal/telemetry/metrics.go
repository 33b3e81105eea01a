package telemetry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "usermgmt"

// Collector owns the metric series for one process. It satisfies both the
// store and directory observer interfaces.
//
// Metric groups:
//   - usermgmt_store_mutations_total{op}: accepted mutations by operation
//   - usermgmt_store_persist_failures_total{op}: slot writes that failed
//   - usermgmt_store_records: record count after the last mutation
//   - usermgmt_directory_fetches_total{outcome}: listing fetches, ok or error
type Collector struct {
	registry        *prometheus.Registry
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	records         prometheus.Gauge
	fetches         *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "mutations_total",
				Help:      "Accepted record store mutations, by operation.",
			},
			[]string{"op"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "persist_failures_total",
				Help:      "Snapshot writes that failed after a mutation, by operation.",
			},
			[]string{"op"},
		),
		records: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "records",
				Help:      "Number of records held after the most recent mutation.",
			},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "directory",
				Name:      "fetches_total",
				Help:      "Directory listing fetches, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	c.registry.MustRegister(c.mutations, c.persistFailures, c.records, c.fetches)
	return c
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveMutation records an accepted store mutation.
func (c *Collector) ObserveMutation(op string, size int) {
	c.mutations.WithLabelValues(op).Inc()
	c.records.Set(float64(size))
}

// ObservePersistFailure records a failed snapshot write.
func (c *Collector) ObservePersistFailure(op string) {
	c.persistFailures.WithLabelValues(op).Inc()
}

// ObserveRecords sets the record gauge without counting a mutation, e.g.
// after the store is loaded from its slot.
func (c *Collector) ObserveRecords(size int) {
	c.records.Set(float64(size))
}

// ObserveFetch records a directory listing fetch outcome.
func (c *Collector) ObserveFetch(outcome string) {
	c.fetches.WithLabelValues(outcome).Inc()
}

// Sample is one gathered series value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// String renders the sample in exposition style, e.g. name{op="add"} 2.
func (s Sample) String() string {
	if len(s.Labels) == 0 {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%q", k, s.Labels[k])
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, strings.Join(pairs, ","), s.Value)
}

// Snapshot gathers every observed series, ordered by name then labels.
// Only counters and gauges are registered here; other metric types are skipped.
func (c *Collector) Snapshot() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v, ok := metricValue(mf.GetType(), m)
			if !ok {
				continue
			}
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: v})
		}
	}
	return out, nil
}

func metricValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue(), true
	default:
		return 0, false
	}
}
