package capacity

import (
	"context"
	"math"
	"sync"
)

// Storage 参数持久化接口，found=false 表示尚未保存过
type Storage interface {
	Load(ctx context.Context) (params *StaffingParameters, found bool, err error)
	Save(ctx context.Context, params *StaffingParameters) error
}

// 参数分类
const (
	CategoryWeekdays = "weekdays"
	CategorySaturday = "saturday"
	CategoryGlobal   = "global"
)

// ParameterStore 可编辑的排班参数
//
// Set/Reset 成功后立即整体写回 Storage（写穿透，不做批量）。
// 非法输入静默忽略，不返回错误。
type ParameterStore struct {
	mu      sync.Mutex
	storage Storage
	params  StaffingParameters
	loaded  bool
}

// NewParameterStore 创建参数存储，首次访问时懒加载
func NewParameterStore(storage Storage) *ParameterStore {
	return &ParameterStore{storage: storage}
}

// Get 返回当前参数的副本
func (s *ParameterStore) Get(ctx context.Context) (StaffingParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return StaffingParameters{}, err
	}
	return s.params, nil
}

// Set 修改单个字段；返回 false 表示输入被忽略（未知字段、负数、NaN/Inf）
func (s *ParameterStore) Set(ctx context.Context, category, field string, value float64) (bool, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	next := s.params
	if !applyField(&next, category, field, value) {
		return false, nil
	}
	next.Weekdays.Recompute()
	next.Saturday.Recompute()

	if err := s.storage.Save(ctx, &next); err != nil {
		return false, err
	}
	s.params = next
	return true, nil
}

// Reset 恢复默认参数并写回
func (s *ParameterStore) Reset(ctx context.Context) (StaffingParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := DefaultParameters()
	if err := s.storage.Save(ctx, &defaults); err != nil {
		return StaffingParameters{}, err
	}
	s.params = defaults
	s.loaded = true
	return s.params, nil
}

func (s *ParameterStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	p, found, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if found && p != nil {
		s.params = *p
		s.params.Weekdays.Recompute()
		s.params.Saturday.Recompute()
	} else {
		s.params = DefaultParameters()
	}
	s.loaded = true
	return nil
}

// applyField 有效工时为派生值，不可直接设置
func applyField(p *StaffingParameters, category, field string, value float64) bool {
	switch category {
	case CategoryWeekdays:
		return applyDayField(&p.Weekdays, field, value)
	case CategorySaturday:
		return applyDayField(&p.Saturday, field, value)
	case CategoryGlobal:
		switch field {
		case "averageHandleTime":
			p.Global.AverageHandleTime = value
		case "targetServiceLevel":
			p.Global.TargetServiceLevel = value
		case "targetWaitTime":
			p.Global.TargetWaitTime = value
		case "abandonmentRate":
			p.Global.AbandonmentRate = value
		default:
			return false
		}
		return true
	}
	return false
}

func applyDayField(d *DayParameters, field string, value float64) bool {
	switch field {
	case "hoursWorked":
		d.HoursWorked = value
	case "lunchBreak":
		d.LunchBreak = value
	case "otherBreaks":
		d.OtherBreaks = value
	case "capacityPerHour":
		d.CapacityPerHour = value
	case "safeCapacity":
		d.SafeCapacity = value
	default:
		return false
	}
	return true
}
