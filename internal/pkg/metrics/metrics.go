package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "krili",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "krili",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Geo metrics
	RoutesEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "geo",
		Name:      "routes_enriched_total",
		Help:      "Route results produced, by kind (road or straight)",
	}, []string{"kind"})

	RoutingProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "geo",
		Name:      "routing_provider_errors_total",
		Help:      "Routing provider failures, by reason",
	}, []string{"reason"})

	RoutingRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "krili",
		Subsystem: "geo",
		Name:      "routing_request_duration_seconds",
		Help:      "Latency of routing provider round trips",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	ProximityCandidatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "geo",
		Name:      "proximity_candidates_skipped_total",
		Help:      "Listing candidates skipped for invalid coordinates",
	})

	// Marketplace metrics
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "marketplace",
		Name:      "reservations_created_total",
		Help:      "Reservation requests accepted",
	})

	ListingsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "marketplace",
		Name:      "listings_moderated_total",
		Help:      "Listing moderation decisions, by outcome",
	}, []string{"outcome"})

	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "marketplace",
		Name:      "notifications_published_total",
		Help:      "Notification events published to the broker",
	}, []string{"type"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "krili",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "krili",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "krili",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "krili",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "krili",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from pgx pool stats.
// Takes an interface so this package does not import pgxpool directly.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
