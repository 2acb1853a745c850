package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/civicsim/internal/civic"
)

// metrics holds the collectors for one server. Each server owns its registry
// so tests can build several servers side by side.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	profiles *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsim_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsim_profiles_total",
			Help: "Profiles produced by archetype.",
		}, []string{"archetype"}),
	}
	m.registry.MustRegister(m.requests, m.profiles)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeProfile(id civic.ArchetypeID) {
	m.profiles.WithLabelValues(string(id)).Inc()
}

// instrument counts responses for route by status code.
func (m *metrics) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.code = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}
