package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the grading domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	gradesRecorded  *prometheus.CounterVec
	appealsOpened   prometheus.Counter
	appealsResolved prometheus.Counter
	recalculations  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	gradesRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_grades_recorded_total",
		Help: "Task grades written, labelled by kind of write",
	}, []string{"kind"})

	appealsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_appeals_opened_total",
		Help: "Grade appeals submitted by students",
	})

	appealsResolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_appeals_resolved_total",
		Help: "Grade appeals resolved by admins",
	})

	recalculations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_recalculations_total",
		Help: "Aggregated grade recalculations",
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		gradesRecorded, appealsOpened, appealsResolved, recalculations)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		gradesRecorded:  gradesRecorded,
		appealsOpened:   appealsOpened,
		appealsResolved: appealsResolved,
		recalculations:  recalculations,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordGradeWrite counts a task-grade write. Kind is one of "insert",
// "update" or "resolve".
func (m *MetricsService) RecordGradeWrite(kind string) {
	if m == nil {
		return
	}
	m.gradesRecorded.WithLabelValues(kind).Inc()
}

// RecordAppealOpened counts a submitted appeal.
func (m *MetricsService) RecordAppealOpened() {
	if m == nil {
		return
	}
	m.appealsOpened.Inc()
}

// RecordAppealResolved counts a resolved appeal.
func (m *MetricsService) RecordAppealResolved() {
	if m == nil {
		return
	}
	m.appealsResolved.Inc()
}

// RecordRecalculation counts an aggregated-grade recalculation.
func (m *MetricsService) RecordRecalculation() {
	if m == nil {
		return
	}
	m.recalculations.Inc()
}
