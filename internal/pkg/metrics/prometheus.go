package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qsecurex"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Licensing metrics
	licensesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "license",
			Name:      "issued_total",
			Help:      "Total number of licenses issued",
		},
		[]string{"plan", "source"},
	)

	keyCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "license",
			Name:      "key_collisions_total",
			Help:      "Generated license keys rejected by the uniqueness constraint",
		},
	)

	// Payment metrics
	paymentOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "orders_total",
			Help:      "Total number of payment orders created",
		},
		[]string{"plan"},
	)

	paymentVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "verifications_total",
			Help:      "Payment verification attempts by result",
		},
		[]string{"result"},
	)

	ordersExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "orders_expired_total",
			Help:      "Orders moved to expired by the maintenance worker",
		},
	)

	// Download metrics
	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "requests_total",
			Help:      "Download requests by tier and outcome",
		},
		[]string{"tier", "result"},
	)

	freeSlotsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "free_slots_remaining",
			Help:      "Free trial download slots left in the global pool",
		},
	)

	artifactLinkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "link_duration_seconds",
			Help:      "Time spent obtaining a signed artifact URL",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"tier"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordLicenseIssued counts an issued license; source is purchase, admin or free_request
func RecordLicenseIssued(plan, source string) {
	licensesIssuedTotal.WithLabelValues(plan, source).Inc()
}

// RecordKeyCollision counts a generated key that was already taken
func RecordKeyCollision() {
	keyCollisionsTotal.Inc()
}

// RecordPaymentOrder counts a created payment order
func RecordPaymentOrder(plan string) {
	paymentOrdersTotal.WithLabelValues(plan).Inc()
}

// RecordPaymentVerification counts a verification attempt by result
func RecordPaymentVerification(result string) {
	paymentVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordOrdersExpired adds n to the expired orders counter
func RecordOrdersExpired(n int64) {
	ordersExpiredTotal.Add(float64(n))
}

// RecordDownload counts a download request by tier and result
func RecordDownload(tier, result string) {
	downloadsTotal.WithLabelValues(tier, result).Inc()
}

// SetFreeSlotsRemaining sets the remaining free slot gauge
func SetFreeSlotsRemaining(n int) {
	freeSlotsRemaining.Set(float64(n))
}

// RecordArtifactLink records how long a signed URL took to obtain
func RecordArtifactLink(tier string, duration time.Duration) {
	artifactLinkDuration.WithLabelValues(tier).Observe(duration.Seconds())
}
