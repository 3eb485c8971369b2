package metrics

import (
	"net/http"
	"strconv"
	"time"

	"trailhaven/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailhaven", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trailhaven", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailhaven", Name: "bookings_created_total", Help: "Bookings inserted."},
		[]string{"status"},
	)
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailhaven", Name: "auth_events_total", Help: "Auth state changes."},
		[]string{"event"}, // SIGNED_IN|SIGNED_OUT|TOKEN_REFRESHED|USER_UPDATED
	)
	FacetFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailhaven", Name: "facet_fallbacks_total", Help: "Facet loads that degraded to an empty list."},
		[]string{"facet"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, BookingsCreated, AuthEvents, FacetFallbacks)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveBooking(status string) {
	BookingsCreated.WithLabelValues(status).Inc()
}

func ObserveFacetFallback(facet string) {
	FacetFallbacks.WithLabelValues(facet).Inc()
}

// CountAuthEvents subscribes to broker and counts every event by type
func CountAuthEvents(broker *session.Broker) func() {
	return broker.Subscribe(func(e session.Event) {
		AuthEvents.WithLabelValues(string(e.Type)).Inc()
	})
}

// Middleware records request count and latency per chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveHTTP(route, r.Method, status, time.Since(start))
	})
}
