package dto

import (
	"time"

	"github.com/admVeloHub/front-console-sub000/internal/analytics"
)

// ── 机器人分析 DTO ──

// PeriodQuery 周期查询参数
type PeriodQuery struct {
	Periodo string `form:"periodo"`
}

// GeneralMetricsResponse 总体指标
type GeneralMetricsResponse struct {
	Period      string                  `json:"period"`
	Granularity analytics.Granularity   `json:"granularity"`
	From        time.Time               `json:"from"`
	To          time.Time               `json:"to"`
	Totals      analytics.Totals        `json:"totals"`
	Series      []analytics.SeriesPoint `json:"series"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// CacheStatusResponse 缓存状态
type CacheStatusResponse struct {
	Active bool `json:"active"`
}

// LastRunResponse 最近一次定时分析
type LastRunResponse struct {
	LastRun *time.Time `json:"lastRun"`
}

// RunResponse 手动触发结果
type RunResponse struct {
	SnapshotID  string           `json:"snapshotId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Totals      analytics.Totals `json:"totals"`
}
