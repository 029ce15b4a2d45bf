package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forum_eda"

// Metrics holds Prometheus metrics for the pipeline and the HTTP surface
type Metrics struct {
	reg prometheus.Gatherer

	RecordsLoaded     prometheus.Counter
	MalformedRecords  prometheus.Counter
	WindowsClosed     prometheus.Counter
	TrailingDaysDrop  prometheus.Counter
	PostsIngested     *prometheus.CounterVec
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	IngestQueueLength prometheus.Gauge
}

// New registers all collectors on reg. Pass a fresh registry in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		RecordsLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Post records parsed from input",
		}),
		MalformedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_malformed_total",
			Help:      "Input lines rejected by the loader",
		}),
		WindowsClosed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "weekly",
			Name:      "windows_closed_total",
			Help:      "Weekly windows emitted by the aggregator",
		}),
		TrailingDaysDrop: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "weekly",
			Name:      "trailing_days_dropped_total",
			Help:      "Daily columns discarded with an unclosed trailing window",
		}),
		PostsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "posts_total",
			Help:      "Posts handed to the store, by outcome",
		}, []string{"outcome"}), // inserted, failed
		RequestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of requests",
		}, []string{"path", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		IngestQueueLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "queue_length",
			Help:      "Posts waiting in the ingest queue",
		}),
	}
}

// NewNop returns metrics bound to a private registry nobody scrapes.
func NewNop() *Metrics { return New(prometheus.NewRegistry()) }

// ObserveWeekly records one weekly aggregation.
func (m *Metrics) ObserveWeekly(closed int, dropped int) {
	m.WindowsClosed.Add(float64(closed))
	m.TrailingDaysDrop.Add(float64(dropped))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by route label and status.
func (m *Metrics) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
	})
}
