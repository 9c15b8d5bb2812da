package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	providerFetches  *prometheus.CounterVec
	providersListed  *prometheus.GaugeVec
	entryResolutions *prometheus.CounterVec
	alertsTotal      *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyhub_provider_fetches_total",
			Help: "Total number of provider list fetches",
		},
		[]string{"page", "status"},
	)
	r.providersListed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "copyhub_providers_listed",
			Help: "Number of providers in the most recently derived list",
		},
		[]string{"page"},
	)
	r.entryResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyhub_entry_resolutions_total",
			Help: "Total number of position entry resolutions",
		},
		[]string{"mode"},
	)
	r.alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyhub_alerts_total",
			Help: "Total number of alert deliveries",
		},
		[]string{"notifier", "status"},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "copyhub_browse_sessions",
			Help: "Number of cached browse sessions",
		},
	)

	reg.MustRegister(r.providerFetches)
	reg.MustRegister(r.providersListed)
	reg.MustRegister(r.entryResolutions)
	reg.MustRegister(r.alertsTotal)
	reg.MustRegister(r.sessionsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordProviderFetch records a provider list fetch outcome for a page.
func (r *Registry) RecordProviderFetch(page, status string) {
	r.providerFetches.WithLabelValues(page, status).Inc()
}

// SetProvidersListed sets the derived list size for a page.
func (r *Registry) SetProvidersListed(page string, n int) {
	r.providersListed.WithLabelValues(page).Set(float64(n))
}

// RecordEntryResolution records a resolved position entry.
func (r *Registry) RecordEntryResolution(mode string) {
	r.entryResolutions.WithLabelValues(mode).Inc()
}

// RecordAlert records an alert delivery outcome.
func (r *Registry) RecordAlert(notifier, status string) {
	r.alertsTotal.WithLabelValues(notifier, status).Inc()
}

// SetSessionsActive sets the number of cached browse sessions.
func (r *Registry) SetSessionsActive(n int) {
	r.sessionsActive.Set(float64(n))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
