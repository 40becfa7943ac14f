// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordOrderPlaced(total float64)
	RecordCartOperation(operation string)
	RecordCatalogMutation(operation string)
	RecordUploadSuccess()
	RecordUploadFailure(reason string)
	RecordUploadLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	ordersPlaced    prometheus.Counter
	orderValue      prometheus.Counter
	cartOps         *prometheus.CounterVec
	catalogMutation *prometheus.CounterVec
	uploadSuccess   prometheus.Counter
	uploadFail      *prometheus.CounterVec
	uploadLatency   prometheus.Histogram
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salvore_orders_placed_total",
			Help: "確定された注文の合計数",
		}),
		orderValue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salvore_order_value_total",
			Help: "確定された注文金額の累計",
		}),
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvore_cart_operations_total",
			Help: "カート操作の合計数",
		}, []string{"operation"}),
		catalogMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvore_catalog_mutations_total",
			Help: "カタログ変更操作の合計数",
		}, []string{"operation"}),
		uploadSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salvore_upload_success_total",
			Help: "画像アップロード成功の合計数",
		}),
		uploadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvore_upload_fail_total",
			Help: "画像アップロード失敗の合計数",
		}, []string{"reason"}),
		uploadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salvore_upload_latency_seconds",
			Help:    "画像アップロードのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvore_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.ordersPlaced,
		c.orderValue,
		c.cartOps,
		c.catalogMutation,
		c.uploadSuccess,
		c.uploadFail,
		c.uploadLatency,
		c.httpStatus,
	)

	return c
}

// RecordOrderPlaced は注文確定を記録する。
func (c *Collector) RecordOrderPlaced(total float64) {
	c.ordersPlaced.Inc()
	c.orderValue.Add(total)
}

// RecordCartOperation はカート操作を記録する。
func (c *Collector) RecordCartOperation(operation string) {
	c.cartOps.WithLabelValues(operation).Inc()
}

// RecordCatalogMutation はカタログ変更操作を記録する。
func (c *Collector) RecordCatalogMutation(operation string) {
	c.catalogMutation.WithLabelValues(operation).Inc()
}

// RecordUploadSuccess はアップロード成功を記録する。
func (c *Collector) RecordUploadSuccess() {
	c.uploadSuccess.Inc()
}

// RecordUploadFailure はアップロード失敗を記録する。
func (c *Collector) RecordUploadFailure(reason string) {
	c.uploadFail.WithLabelValues(reason).Inc()
}

// RecordUploadLatency はアップロードのレイテンシを記録する。
func (c *Collector) RecordUploadLatency(duration time.Duration) {
	c.uploadLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
