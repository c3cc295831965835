package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salary_simulator"

// Metrics owns a private registry so tests can build isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsInFlight    prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SimulationsCalculated *prometheus.CounterVec
	SimulationsDeleted    prometheus.Counter
	SimulatedSalary       prometheus.Histogram
	WeightsSaved          *prometheus.CounterVec

	skipPath string
}

func New(skipPath string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		skipPath: skipPath,

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		SimulationsCalculated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulations",
			Name:      "calculated_total",
			Help:      "Salary computations by reason.",
		}, []string{"reason"}),
		SimulationsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulations",
			Name:      "deleted_total",
			Help:      "Number of deleted simulations.",
		}),
		SimulatedSalary: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulations",
			Name:      "salary",
			Help:      "Distribution of computed salaries.",
			Buckets:   prometheus.LinearBuckets(20000, 10000, 10),
		}),
		WeightsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "weights_saved_total",
			Help:      "Reference rows updated from the settings screen, by table.",
		}, []string{"table"}),
	}

	m.Registry.MustRegister(
		m.RequestsInFlight,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SimulationsCalculated,
		m.SimulationsDeleted,
		m.SimulatedSalary,
		m.WeightsSaved,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latency per chi route pattern.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == m.skipPath {
			next.ServeHTTP(w, r)
			return
		}

		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Subscribe counts domain events published on the bus.
func (m *Metrics) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeSimulationCalculated, func(ctx context.Context, e events.Event) error {
		calculated, ok := e.(*events.SimulationCalculatedEvent)
		if !ok {
			return nil
		}
		m.SimulationsCalculated.WithLabelValues(calculated.Reason).Inc()
		m.SimulatedSalary.Observe(calculated.Salary)
		return nil
	})

	bus.Subscribe(events.EventTypeSimulationDeleted, func(ctx context.Context, e events.Event) error {
		m.SimulationsDeleted.Inc()
		return nil
	})

	bus.Subscribe(events.EventTypeWeightsSaved, func(ctx context.Context, e events.Event) error {
		saved, ok := e.(*events.WeightsSavedEvent)
		if !ok {
			return nil
		}
		for table, count := range saved.Tables {
			m.WeightsSaved.WithLabelValues(table).Add(float64(count))
		}
		return nil
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern keeps label cardinality bounded: /simulations/42 becomes
// /simulations/{id}. Unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
