package model

import (
	"time"

	"github.com/admVeloHub/front-console-sub000/internal/analytics"
)

// AnalysisSnapshot 定时分析结果快照 — mongo 集合 bot_analises_snapshots
type AnalysisSnapshot struct {
	ID          string             `bson:"_id"         json:"id"`
	Period      string             `bson:"period"      json:"period"`
	Trigger     string             `bson:"trigger"     json:"trigger"` // "cron" | "manual"
	GeneratedAt time.Time          `bson:"generatedAt" json:"generatedAt"`
	Metrics     *analytics.Metrics `bson:"metrics"     json:"metrics"`
}
