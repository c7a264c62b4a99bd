// v1
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries the simulator's Prometheus instruments. A nil *Metrics
// is valid and turns every method into a no-op. Each instance owns its
// registry so multiple simulators can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ticksTotal        prometheus.Counter
	dispatchTotal     *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	readingValue      *prometheus.GaugeVec
	lastDispatchError prometheus.Gauge
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hydrosim_ticks_total",
			Help: "Total generation ticks executed.",
		}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrosim_dispatch_total",
			Help: "Total snapshot dispatches by sink and result.",
		}, []string{"sink", "result"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hydrosim_dispatch_duration_seconds",
			Help:    "Histogram of per-sink dispatch durations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
		readingValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hydrosim_reading_value",
			Help: "Latest generated value by device and reading type.",
		}, []string{"device", "type"}),
		lastDispatchError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hydrosim_last_dispatch_error_timestamp_seconds",
			Help: "Unix timestamp of the most recent dispatch failure.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrosim_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hydrosim_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.ticksTotal,
		m.dispatchTotal,
		m.dispatchDuration,
		m.readingValue,
		m.lastDispatchError,
		m.httpRequestsTotal,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
}

func (m *Metrics) Dispatch(sink string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.dispatchTotal.WithLabelValues(sink, result).Inc()
	m.dispatchDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

func (m *Metrics) Reading(device, readingType string, value float64) {
	if m == nil {
		return
	}
	m.readingValue.WithLabelValues(device, readingType).Set(value)
}

func (m *Metrics) DispatchError(ts time.Time) {
	if m == nil {
		return
	}
	m.lastDispatchError.Set(float64(ts.Unix()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
