package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 链上交易延迟（毫秒），从提交到确认
	ChainTxLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_tx_latency_ms",
			Help:    "On-chain transaction latency from submit to confirmation in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12), // 100ms to ~400s
		},
		[]string{"method"},
	)

	// 链上交易计数
	ChainTxCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_tx_count",
			Help: "Total number of on-chain transactions by outcome",
		},
		[]string{"method", "status"}, // status: confirmed, failed
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// OTP 发放计数
	OTPIssuedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_issued_count",
			Help: "Total number of OTPs issued",
		},
	)

	// OTP 验证计数
	OTPVerifiedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verified_count",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"}, // result: ok, rejected
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)

	// 质押认证提交计数
	AttestationSubmittedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attestation_submitted_count",
			Help: "Total number of milestone attestations submitted",
		},
	)

	// 拨款释放计数
	DisbursementReleasedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disbursement_released_count",
			Help: "Total number of disbursements released",
		},
		[]string{"rail"}, // rail: chain, bank, clawback
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordChainTx 记录链上交易结果与延迟
func RecordChainTx(method, status string, duration time.Duration) {
	ChainTxCount.WithLabelValues(method, status).Inc()
	if status == "confirmed" {
		ChainTxLatency.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
	}
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
