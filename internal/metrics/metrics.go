// Package metrics exposes Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "raadhya"

	OutcomeAccepted = "accepted"
	OutcomeBlocked  = "blocked"
	OutcomeFailed   = "failed"
)

// Metrics 持有所有业务与 HTTP 指标。方法对 nil 接收者安全，便于测试时省略。
type Metrics struct {
	registry *prometheus.Registry

	chatMessages   *prometheus.CounterVec
	threats        *prometheus.CounterVec
	codeExecutions *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New 创建独立 registry，并注册 Go 运行时与进程指标。
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages submitted, by outcome.",
		}, []string{"outcome"}),
		threats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "threats_detected_total",
			Help:      "Threat verdicts raised by the classifier.",
		}, []string{"threat_type", "severity"}),
		codeExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "code",
			Name:      "executions_total",
			Help:      "Code execution requests, by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	registry.MustRegister(m.chatMessages, m.threats, m.codeExecutions, m.httpDuration)
	return m
}

// Registry 返回底层 registry。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ChatMessage(outcome string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ThreatDetected(threatType, severity string) {
	if m == nil {
		return
	}
	m.threats.WithLabelValues(threatType, severity).Inc()
}

func (m *Metrics) CodeExecution(outcome string) {
	if m == nil {
		return
	}
	m.codeExecutions.WithLabelValues(outcome).Inc()
}

// Middleware 记录请求耗时，路由维度使用 chi 的路由模式以避免高基数。
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
