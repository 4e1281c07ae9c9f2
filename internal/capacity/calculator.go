package capacity

import (
	"fmt"
	"math"
)

// Calculate 计算单个区间所需人数与利用率
//
// headcount = ceil(volume / safeCapacity)
// utilization = volume / (headcount * safeCapacity) * 100，人数为 0 时记 0
// 利用率不做截断，低话量时可能超过 100%，如实反映负载
func Calculate(rec IntervalRecord, params DayParameters) (CapacityResult, error) {
	if err := checkSafeCapacity(params.SafeCapacity); err != nil {
		return CapacityResult{}, err
	}
	if rec.Volume < 0 {
		return CapacityResult{}, fmt.Errorf("%w: volume negativo (%d) no intervalo %d", ErrInvalidInput, rec.Volume, rec.Interval)
	}

	headcount := int(math.Ceil(float64(rec.Volume) / params.SafeCapacity))

	utilization := 0.0
	if headcount > 0 {
		utilization = float64(rec.Volume) / (float64(headcount) * params.SafeCapacity) * 100
	}

	return CapacityResult{
		Interval:           rec.Interval,
		Label:              rec.Label,
		Volume:             rec.Volume,
		HeadcountRequired:  headcount,
		UtilizationPercent: utilization,
		HealthStatus:       ClassifyUtilization(utilization),
	}, nil
}

// CalculateDay 对一个日期类型的全部区间计算结果并汇总
// 任一记录非法即整体失败，不做静默兜底
func CalculateDay(records []IntervalRecord, dayType DayType, params DayParameters) (*DayReport, error) {
	if err := checkSafeCapacity(params.SafeCapacity); err != nil {
		return nil, fmt.Errorf("%s: %w", dayType.Label(), err)
	}

	results := make([]CapacityResult, 0, len(records))
	for _, rec := range records {
		res, err := Calculate(rec, params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dayType.Label(), err)
		}
		results = append(results, res)
	}

	return &DayReport{
		DayType:    dayType,
		Parameters: params,
		Results:    results,
		Summary:    Summarize(dayType, results),
	}, nil
}

// CalculateReport 计算工作日与周六两份日报
func CalculateReport(weekdays, saturday []IntervalRecord, params StaffingParameters) (*Report, error) {
	wd, err := CalculateDay(weekdays, Weekdays, params.Weekdays)
	if err != nil {
		return nil, err
	}
	sat, err := CalculateDay(saturday, Saturday, params.Saturday)
	if err != nil {
		return nil, err
	}
	return &Report{Weekdays: wd, Saturday: sat, Global: params.Global}, nil
}

// Summarize 汇总结果；峰值取人数最多的区间，平局取先出现者
func Summarize(dayType DayType, results []CapacityResult) CapacitySummary {
	sum := CapacitySummary{
		DayType:      dayType,
		RecordCount:  len(results),
		PeakInterval: -1,
		StatusCounts: map[HealthStatus]int{Healthy: 0, Attention: 0, Critical: 0},
	}

	var utilTotal float64
	for _, r := range results {
		sum.TotalHeadcount += r.HeadcountRequired
		sum.TotalVolume += r.Volume
		utilTotal += r.UtilizationPercent
		sum.StatusCounts[r.HealthStatus]++
		if r.HeadcountRequired > sum.PeakHeadcount || sum.PeakInterval < 0 {
			sum.PeakHeadcount = r.HeadcountRequired
			sum.PeakInterval = r.Interval
		}
	}
	if len(results) > 0 {
		sum.AverageUtilization = utilTotal / float64(len(results))
	}
	return sum
}

func checkSafeCapacity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: capacidade segura deve ser um número positivo (recebido %v)", ErrInvalidInput, v)
	}
	return nil
}
