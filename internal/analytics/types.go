// Package analytics 汇总机器人活动日志：时间序列、高频问题、用户排行与最近动态。
package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownPeriod 未知的统计周期
var ErrUnknownPeriod = errors.New("período desconhecido")

// ActivityLog 单条活动日志
type ActivityLog struct {
	UserID    string                 `bson:"userId" json:"userId"`
	Action    string                 `bson:"action" json:"action"`
	Details   map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	SessionID string                 `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
}

// Granularity 时间桶粒度
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Period 统计周期
type Period struct {
	Key  string `json:"key"`
	Days int    `json:"days"`
}

var periods = map[string]int{
	"1dia":    1,
	"7dias":   7,
	"30dias":  30,
	"90dias":  90,
	"180dias": 180,
	"1ano":    365,
}

// ParsePeriod 解析周期字符串，如 "7dias"
func ParsePeriod(key string) (Period, error) {
	days, ok := periods[key]
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, key)
	}
	return Period{Key: key, Days: days}, nil
}

// Granularity 按周期长度选择粒度：≤30 天按日，≤90 天按周，其余按月
func (p Period) Granularity() Granularity {
	switch {
	case p.Days <= 30:
		return Day
	case p.Days <= 90:
		return Week
	default:
		return Month
	}
}

// Range 以 now 为终点的时间窗口
func (p Period) Range(now time.Time) (from, to time.Time) {
	return now.AddDate(0, 0, -p.Days), now
}

// SeriesPoint 时间序列中的一个桶
type SeriesPoint struct {
	Bucket    time.Time `json:"bucket"`
	Label     string    `json:"label"`
	Total     int       `json:"total"`
	Questions int       `json:"questions"`
}

// QuestionCount 问题频次
type QuestionCount struct {
	Question string `json:"question"`
	Example  string `json:"example"`
	Count    int    `json:"count"`
}

// RankingEntry 用户排行
type RankingEntry struct {
	UserID        string  `json:"userId"`
	QuestionCount int     `json:"questionCount"`
	SessionCount  int     `json:"sessionCount"`
	Score         float64 `json:"score"`
}

// FeedItem 最近动态
type FeedItem struct {
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Question  string    `json:"question,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Totals 周期内总量
type Totals struct {
	Entries        int `json:"entries"`
	Questions      int `json:"questions"`
	UniqueUsers    int `json:"uniqueUsers"`
	UniqueSessions int `json:"uniqueSessions"`
}

// Metrics 一个周期的完整统计结果
type Metrics struct {
	Period       string          `json:"period"`
	Granularity  Granularity     `json:"granularity"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Series       []SeriesPoint   `json:"series"`
	TopQuestions []QuestionCount `json:"topQuestions"`
	Ranking      []RankingEntry  `json:"ranking"`
	Feed         []FeedItem      `json:"feed"`
	Totals       Totals          `json:"totals"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}
