package offline

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	NetworkFallbacks   *prometheus.CounterVec
	AssetFailures      prometheus.Counter
	NotificationsShown *prometheus.CounterVec
	Activations        prometheus.Counter
}

// NewMetrics builds the worker counters and registers them with reg. A nil
// registerer leaves them unregistered, which makes them no-ops for
// exposition.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "cache_hits_total",
			Help:      "Intercepted requests answered from a cache generation.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "cache_misses_total",
			Help:      "Intercepted requests that went to the network.",
		}),
		NetworkFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "network_fallbacks_total",
			Help:      "Network failures answered with a cached fallback.",
		}, []string{"destination"}),
		AssetFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "asset_cache_failures_total",
			Help:      "Shell assets that failed to precache during install.",
		}),
		NotificationsShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "notifications_shown_total",
			Help:      "Notifications displayed, by tag.",
		}, []string{"tag"}),
		Activations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zappygames",
			Subsystem: "offline",
			Name:      "worker_activations_total",
			Help:      "Worker versions that reached the active state.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CacheHits,
			m.CacheMisses,
			m.NetworkFallbacks,
			m.AssetFailures,
			m.NotificationsShown,
			m.Activations,
		)
	}

	return m
}
