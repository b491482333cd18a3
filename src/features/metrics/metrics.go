package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreCounter reports how many records the local store holds.
type StoreCounter interface {
	StoredCount(ctx context.Context) (int, error)
}

// Collector records provider and import outcomes as Prometheus metrics.
// It satisfies lyrics.Observer.
type Collector struct {
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	imports          *prometheus.CounterVec
	storedLyrics     prometheus.GaugeFunc
	registry         *prometheus.Registry
}

// NewCollector creates the lyrics metrics and registers them on registry.
// store may be nil, in which case the stored-lyrics gauge is not exported.
func NewCollector(registry *prometheus.Registry, store StoreCounter) (*Collector, error) {
	c := &Collector{registry: registry}
	c.providerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrics_provider_requests_total",
		Help: "Provider calls by provider, operation and outcome (hit, miss, error).",
	}, []string{"provider", "operation", "outcome"})

	c.providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lyrics_provider_duration_seconds",
		Help:    "Duration of provider calls in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"provider", "operation"})

	c.imports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrics_imports_total",
		Help: "Store writes by kind (upload, import, save) and outcome.",
	}, []string{"kind", "outcome"})

	collectors := []prometheus.Collector{c.providerRequests, c.providerDuration, c.imports}
	if store != nil {
		c.storedLyrics = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lyrics_stored",
			Help: "Number of lyrics in the local store.",
		}, func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			count, err := store.StoredCount(ctx)
			if err != nil {
				slog.Warn("Failed to count stored lyrics", "error", err)
				return 0
			}
			return float64(count)
		})
		collectors = append(collectors, c.storedLyrics)
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register lyrics metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveProvider records one provider call.
func (c *Collector) ObserveProvider(provider, operation, outcome string, elapsed time.Duration) {
	c.providerRequests.WithLabelValues(provider, operation, outcome).Inc()
	c.providerDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// ObserveImport records one store write attempt.
func (c *Collector) ObserveImport(kind, outcome string) {
	c.imports.WithLabelValues(kind, outcome).Inc()
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
