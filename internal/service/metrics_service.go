package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the scan path,
// report aggregation and the HTTP layer.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	scanTotal       *prometheus.CounterVec
	scanRejected    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
}

// NewMetricsService registers the collectors.
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

	scanTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_scans_total",
		Help: "Accepted QR scans by event kind and resulting status",
	}, []string{"kind", "status"})

	scanRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_scans_rejected_total",
		Help: "Rejected QR scans by reason code",
	}, []string{"reason"})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_build_duration_seconds",
		Help:    "Time spent aggregating attendance reports",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_queue_depth",
		Help: "Messages waiting in the WhatsApp dispatch queue",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scanTotal, scanRejected, reportDuration, queueDepth, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		scanTotal:       scanTotal,
		scanRejected:    scanRejected,
		reportDuration:  reportDuration,
		queueDepth:      queueDepth,
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

// ObserveScan counts one accepted scan.
func (m *MetricsService) ObserveScan(kind models.EventKind, status models.AttendanceStatus) {
	if m == nil {
		return
	}
	m.scanTotal.WithLabelValues(string(kind), string(status)).Inc()
}

// ObserveScanRejected counts one rejected scan by reason code.
func (m *MetricsService) ObserveScanRejected(reason string) {
	if m == nil {
		return
	}
	m.scanRejected.WithLabelValues(reason).Inc()
}

// ObserveReport records how long one report aggregation took.
func (m *MetricsService) ObserveReport(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// SetQueueDepth tracks the outbound notification backlog.
func (m *MetricsService) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
