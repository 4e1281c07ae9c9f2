// Package capacity 实现呼叫中心容量规划：区间文件解析、人力计算、参数存储与报表导出。
//
// 计算部分为纯函数，不做任何 I/O；存储与导出通过接口或返回字节由调用方落地。
package capacity

import (
	"errors"
	"fmt"
)

// DayType 日期类型
type DayType string

const (
	Weekdays DayType = "weekdays"
	Saturday DayType = "saturday"
)

// DayTypes 参与计算的全部日期类型（顺序即报表顺序）
var DayTypes = []DayType{Weekdays, Saturday}

// Label 报表中的工作表名
func (d DayType) Label() string {
	switch d {
	case Weekdays:
		return "Dias Úteis"
	case Saturday:
		return "Sábado"
	default:
		return string(d)
	}
}

// ParseDayType 解析日期类型
func ParseDayType(s string) (DayType, error) {
	switch DayType(s) {
	case Weekdays, Saturday:
		return DayType(s), nil
	}
	return "", fmt.Errorf("%w: tipo de dia %q", ErrInvalidInput, s)
}

// HealthStatus 利用率健康分级
type HealthStatus string

const (
	Healthy   HealthStatus = "Healthy"
	Attention HealthStatus = "Attention"
	Critical  HealthStatus = "Critical"
)

const (
	criticalThreshold  = 90.0
	attentionThreshold = 75.0
)

// ClassifyUtilization 按利用率分级，阈值为严格大于
func ClassifyUtilization(utilizationPercent float64) HealthStatus {
	switch {
	case utilizationPercent > criticalThreshold:
		return Critical
	case utilizationPercent > attentionThreshold:
		return Attention
	default:
		return Healthy
	}
}

// ── 业务错误 ──

var (
	ErrInvalidInput      = errors.New("entrada numérica inválida")
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrNoResults         = errors.New("nenhum resultado disponível para exportar")
)

// IntervalRecord 单个统计区间的来电量
type IntervalRecord struct {
	Interval int    `json:"interval"` // 0-23 小时
	Label    string `json:"label"`    // 文件中的原始文本
	Volume   int    `json:"volume"`
}

// DayParameters 单个日期类型的排班参数（单位：小时 / 通话数）
type DayParameters struct {
	HoursWorked     float64 `json:"hoursWorked"`
	LunchBreak      float64 `json:"lunchBreak"`
	OtherBreaks     float64 `json:"otherBreaks"`
	EffectiveHours  float64 `json:"effectiveHours"`
	CapacityPerHour float64 `json:"capacityPerHour"`
	SafeCapacity    float64 `json:"safeCapacity"`
}

// Recompute 重新计算有效工时，结果不小于 0
func (p *DayParameters) Recompute() {
	eff := p.HoursWorked - p.LunchBreak - p.OtherBreaks
	if eff < 0 {
		eff = 0
	}
	p.EffectiveHours = eff
}

// GlobalParameters 全局服务水平参数
type GlobalParameters struct {
	AverageHandleTime  float64 `json:"averageHandleTime"`  // 分钟
	TargetServiceLevel float64 `json:"targetServiceLevel"` // %
	TargetWaitTime     float64 `json:"targetWaitTime"`     // 秒
	AbandonmentRate    float64 `json:"abandonmentRate"`    // %
}

// StaffingParameters 全部可编辑参数
type StaffingParameters struct {
	Weekdays DayParameters    `json:"weekdays"`
	Saturday DayParameters    `json:"saturday"`
	Global   GlobalParameters `json:"global"`
}

// ForDay 取指定日期类型的参数
func (p *StaffingParameters) ForDay(d DayType) (DayParameters, error) {
	switch d {
	case Weekdays:
		return p.Weekdays, nil
	case Saturday:
		return p.Saturday, nil
	}
	return DayParameters{}, fmt.Errorf("%w: tipo de dia %q", ErrInvalidInput, d)
}

// DefaultParameters 默认参数
func DefaultParameters() StaffingParameters {
	p := StaffingParameters{
		Weekdays: DayParameters{
			HoursWorked:     8,
			LunchBreak:      1,
			OtherBreaks:     0.5,
			CapacityPerHour: 15,
			SafeCapacity:    11.25,
		},
		Saturday: DayParameters{
			HoursWorked:     6,
			LunchBreak:      0,
			OtherBreaks:     0.5,
			CapacityPerHour: 15,
			SafeCapacity:    11.25,
		},
		Global: GlobalParameters{
			AverageHandleTime:  4,
			TargetServiceLevel: 80,
			TargetWaitTime:     20,
			AbandonmentRate:    5,
		},
	}
	p.Weekdays.Recompute()
	p.Saturday.Recompute()
	return p
}

// CapacityResult 单个区间的计算结果
type CapacityResult struct {
	Interval           int          `json:"interval"`
	Label              string       `json:"label"`
	Volume             int          `json:"volume"`
	HeadcountRequired  int          `json:"headcountRequired"`
	UtilizationPercent float64      `json:"utilizationPercent"`
	HealthStatus       HealthStatus `json:"healthStatus"`
}

// CapacitySummary 单个日期类型的汇总
type CapacitySummary struct {
	DayType            DayType              `json:"dayType"`
	TotalHeadcount     int                  `json:"totalHeadcount"`
	TotalVolume        int                  `json:"totalVolume"`
	AverageUtilization float64              `json:"averageUtilization"`
	RecordCount        int                  `json:"recordCount"`
	PeakInterval       int                  `json:"peakInterval"`
	PeakHeadcount      int                  `json:"peakHeadcount"`
	StatusCounts       map[HealthStatus]int `json:"statusCounts"`
}

// DayReport 单个日期类型的完整结果
type DayReport struct {
	DayType    DayType          `json:"dayType"`
	Parameters DayParameters    `json:"parameters"`
	Results    []CapacityResult `json:"results"`
	Summary    CapacitySummary  `json:"summary"`
}

// Report 两种日期类型的报表
type Report struct {
	Weekdays *DayReport       `json:"weekdays"`
	Saturday *DayReport       `json:"saturday"`
	Global   GlobalParameters `json:"global"`
}

// Days 按报表顺序返回存在的日报
func (r *Report) Days() []*DayReport {
	days := make([]*DayReport, 0, 2)
	if r.Weekdays != nil {
		days = append(days, r.Weekdays)
	}
	if r.Saturday != nil {
		days = append(days, r.Saturday)
	}
	return days
}
