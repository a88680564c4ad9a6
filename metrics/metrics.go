// Package metrics 定义推荐服务的 Prometheus 指标及记录函数。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐结果分类，对应 RecommendRequests 的 outcome 标签。
const (
	OutcomeOK              = "ok"
	OutcomeUnderdetermined = "underdetermined"
	OutcomeInvalid         = "invalid"
	OutcomeError           = "error"
)

// 缓存查询结果，对应 CacheLookups 的 result 标签。
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerec_recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerec_candidate_pool_size",
			Help:    "Number of candidates ranked per request",
			Buckets: []float64{0, 10, 50, 100, 200, 400, 600},
		},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_catalog_requests_total",
			Help: "Total number of game catalog API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// 0=closed, 1=half-open, 2=open
	CatalogCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamerec_catalog_circuit_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_cache_lookups_total",
			Help: "Total number of catalog cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordRecommend 记录一次推荐请求的结果、耗时与候选集大小。
func RecordRecommend(outcome string, duration time.Duration, candidates int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		CandidatePoolSize.Observe(float64(candidates))
	}
}

// RecordCatalogRequest 记录一次目录 API 请求。
func RecordCatalogRequest(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CatalogRequests.WithLabelValues(endpoint, outcome).Inc()
}

// SetCatalogCircuitState 更新熔断器状态。
func SetCatalogCircuitState(state int) {
	CatalogCircuitState.Set(float64(state))
}

// RecordCacheLookup 记录一次缓存查询。
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}
