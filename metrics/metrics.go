// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	UploadContents    *prometheus.CounterVec
	UploadAnnotations *prometheus.CounterVec
	RemoteAPICalls    *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RequestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odr_http_requests_total",
		Help: "HTTP requests partitioned by method and status code.",
	}, []string{"method", "status"})

	m.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odr_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	m.UploadContents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odr_upload_contents_total",
		Help: "Content records created by uploads, partitioned by write path (db or api).",
	}, []string{"via"})

	m.UploadAnnotations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odr_upload_annotations_total",
		Help: "Bulk-upload annotations partitioned by result (created, failed, skipped).",
	}, []string{"result"})

	m.RemoteAPICalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odr_remote_api_calls_total",
		Help: "Calls to the content-processing API partitioned by endpoint and result.",
	}, []string{"endpoint", "result"})

	for _, c := range []prometheus.Collector{
		m.RequestCounter, m.RequestDuration, m.UploadContents, m.UploadAnnotations, m.RemoteAPICalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry exposes the underlying registry for tests and custom handlers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) IncUploadContent(via string) {
	if m == nil {
		return
	}
	m.UploadContents.WithLabelValues(via).Inc()
}

func (m *Metrics) AddUploadAnnotations(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UploadAnnotations.WithLabelValues(result).Add(float64(n))
}

func (m *Metrics) IncRemoteAPICall(endpoint string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RemoteAPICalls.WithLabelValues(endpoint, result).Inc()
}
