package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	// SliceFor labels a request with the slice serving it
	SliceFor func(*http.Request) string
}

// NewMetrics creates and registers the collectors
func NewMetrics(registerer prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of handled http requests",
			},
			[]string{"method", "route", "slice", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of handled http requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "slice"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler is the middleware
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := NewWrapResponseWriter(w)
		start := time.Now()

		next.ServeHTTP(writer, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		slice := ""
		if m.SliceFor != nil {
			slice = m.SliceFor(r)
		}

		m.requests.WithLabelValues(r.Method, route, slice, strconv.Itoa(writer.Status())).Inc()
		m.duration.WithLabelValues(r.Method, route, slice).Observe(time.Since(start).Seconds())
	})
}
