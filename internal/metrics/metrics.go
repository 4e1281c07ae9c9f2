// Package metrics 定义 Prometheus 指标，统一注册到独立 Registry，由 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 应用自有的指标注册表
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ═══════════════════════════════════════════════════════════
// 容量规划
// ═══════════════════════════════════════════════════════════

// CapacityCalculationsTotal 计算请求次数，按结果区分
var CapacityCalculationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "calculations_total",
	Help:      "Total staffing calculations by outcome",
}, []string{"outcome"})

// CapacityParsedRecordsTotal 解析成功的区间记录数
var CapacityParsedRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "parsed_records_total",
	Help:      "Interval records parsed from uploads",
}, []string{"day_type"})

// CapacityRejectedRowsTotal 被丢弃的行数
var CapacityRejectedRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "rejected_rows_total",
	Help:      "Upload rows rejected by the interval parser",
}, []string{"day_type"})

// CapacityHeadcountRequired 最近一次计算的总人数
var CapacityHeadcountRequired = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "capacity",
	Name:      "headcount_required",
	Help:      "Total headcount required by the latest calculation",
}, []string{"day_type"})

// CapacityExportsTotal 导出次数
var CapacityExportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "exports_total",
	Help:      "Report exports by format",
}, []string{"format"})

// ═══════════════════════════════════════════════════════════
// 机器人分析
// ═══════════════════════════════════════════════════════════

// AnalyticsCacheHitsTotal 缓存命中
var AnalyticsCacheHitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "cache_hits_total",
	Help:      "Aggregator cache hits by period",
}, []string{"period"})

// AnalyticsCacheMissesTotal 缓存未命中（含不缓存的长周期）
var AnalyticsCacheMissesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "cache_misses_total",
	Help:      "Aggregator cache misses by period",
}, []string{"period"})

// AnalyticsFetchRetriesTotal 拉取活动日志的重试次数
var AnalyticsFetchRetriesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "fetch_retries_total",
	Help:      "Retries performed while fetching activity logs",
})

// AnalyticsFetchDurationSeconds 单次拉取耗时
var AnalyticsFetchDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analytics",
	Name:      "fetch_duration_seconds",
	Help:      "Time taken to fetch activity logs",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
})

// AnalysisJobRunsTotal 定时分析任务执行次数
var AnalysisJobRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "job_runs_total",
	Help:      "Scheduled analysis runs by outcome",
}, []string{"outcome"})

// ═══════════════════════════════════════════════════════════
// HTTP
// ═══════════════════════════════════════════════════════════

// HTTPRequestsTotal 请求计数
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route and status",
}, []string{"method", "route", "status"})

// HTTPRequestDurationSeconds 请求耗时
var HTTPRequestDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})
