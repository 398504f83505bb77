package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics は Prometheus メトリクスのヘルパー構造体。
// RED メソッドに加えて認証失敗と JWKS 取得の件数を提供する。
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	GRPCHandledTotal     *prometheus.CounterVec
	GRPCHandlingDuration *prometheus.HistogramVec
	AuthFailuresTotal    *prometheus.CounterVec
	JWKSRefreshTotal     *prometheus.CounterVec
}

// NewMetrics はデフォルトレジストリに登録したメトリクスを返す。
func NewMetrics(serviceName string) *Metrics {
	return NewMetricsWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer は指定したレジストリに登録したメトリクスを返す。
func NewMetricsWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Histogram of HTTP request latency",
				ConstLabels: labels,
				Buckets:     latencyBuckets,
			},
			[]string{"method", "path"},
		),
		GRPCHandledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "grpc_server_handled_total",
				Help:        "Total number of RPCs completed on the server",
				ConstLabels: labels,
			},
			[]string{"grpc_service", "grpc_method", "grpc_code"},
		),
		GRPCHandlingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "grpc_server_handling_seconds",
				Help:        "Histogram of response latency of gRPC",
				ConstLabels: labels,
				Buckets:     latencyBuckets,
			},
			[]string{"grpc_service", "grpc_method"},
		),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "auth_failures_total",
				Help:        "Total number of rejected requests by failure kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		JWKSRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "jwks_refresh_total",
				Help:        "Total number of JWKS fetch attempts by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCHandledTotal,
		m.GRPCHandlingDuration,
		m.AuthFailuresTotal,
		m.JWKSRefreshTotal,
	)

	return m
}

// RecordAuthFailure は認証・認可失敗を種別ごとに記録する。nil の場合は何もしない。
func (m *Metrics) RecordAuthFailure(kind string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordJWKSRefresh は JWKS 取得結果を記録する。nil の場合は何もしない。
func (m *Metrics) RecordJWKSRefresh(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.JWKSRefreshTotal.WithLabelValues(result).Inc()
}

// MetricsHandler は /metrics エンドポイント用の HTTP ハンドラを返す。
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
