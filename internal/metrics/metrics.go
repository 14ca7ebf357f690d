// Package metrics provides Prometheus metrics for the feed client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "headlines"

// Item sources used as label values.
const (
	SourceSnapshot = "snapshot"
	SourceStream   = "stream"
	SourcePoller   = "poller"
)

// Metrics groups the client's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// ItemsAccepted counts items that entered the store, by source.
	ItemsAccepted *prometheus.CounterVec
	// ItemsEvicted counts items pushed out by the capacity bound.
	ItemsEvicted prometheus.Counter
	// FramesDiscarded counts stream frames dropped without effect, by reason.
	FramesDiscarded *prometheus.CounterVec
	// SnapshotFetches counts snapshot requests by caller and result.
	SnapshotFetches *prometheus.CounterVec
	// Reconnects counts scheduled reconnect attempts.
	Reconnects prometheus.Counter
	// ConnectionState is 1 for the current state and 0 for the others.
	ConnectionState *prometheus.GaugeVec
	// StoreSize tracks the number of stored items.
	StoreSize prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ItemsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_accepted_total",
				Help:      "Total number of items merged into the store",
			},
			[]string{"source"},
		),
		ItemsEvicted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_evicted_total",
				Help:      "Total number of items evicted by the capacity bound",
			},
		),
		FramesDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_discarded_total",
				Help:      "Total number of stream frames discarded",
			},
			[]string{"reason"},
		),
		SnapshotFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_fetches_total",
				Help:      "Total number of snapshot requests",
			},
			[]string{"caller", "result"},
		),
		Reconnects: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconnects_total",
				Help:      "Total number of scheduled stream reconnects",
			},
		),
		ConnectionState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connection_state",
				Help:      "Stream connection state (1 = current)",
			},
			[]string{"state"},
		),
		StoreSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_items",
				Help:      "Number of items in the store",
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMerge records the outcome of one merge into the store.
func (m *Metrics) RecordMerge(source string, accepted, evicted, size int) {
	if m == nil {
		return
	}
	m.ItemsAccepted.WithLabelValues(source).Add(float64(accepted))
	m.ItemsEvicted.Add(float64(evicted))
	m.StoreSize.Set(float64(size))
}

// RecordFetch records a snapshot request.
func (m *Metrics) RecordFetch(caller string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SnapshotFetches.WithLabelValues(caller, result).Inc()
}

// RecordDiscard records a dropped stream frame.
func (m *Metrics) RecordDiscard(reason string) {
	if m == nil {
		return
	}
	m.FramesDiscarded.WithLabelValues(reason).Inc()
}

// RecordReconnect records a scheduled reconnect.
func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

// SetState marks current as the active connection state among all.
func (m *Metrics) SetState(current string, all []string) {
	if m == nil {
		return
	}
	for _, name := range all {
		value := 0.0
		if name == current {
			value = 1
		}
		m.ConnectionState.WithLabelValues(name).Set(value)
	}
}
