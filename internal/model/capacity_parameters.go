package model

// CapacityParameters 每个用户一行的排班参数 — 对应 capacity_parameters
type CapacityParameters struct {
	OwnerID string `gorm:"type:uuid;primaryKey"`

	WeekdaysHoursWorked     float64 `gorm:"not null"`
	WeekdaysLunchBreak      float64 `gorm:"not null"`
	WeekdaysOtherBreaks     float64 `gorm:"not null"`
	WeekdaysCapacityPerHour float64 `gorm:"not null"`
	WeekdaysSafeCapacity    float64 `gorm:"not null"`

	SaturdayHoursWorked     float64 `gorm:"not null"`
	SaturdayLunchBreak      float64 `gorm:"not null"`
	SaturdayOtherBreaks     float64 `gorm:"not null"`
	SaturdayCapacityPerHour float64 `gorm:"not null"`
	SaturdaySafeCapacity    float64 `gorm:"not null"`

	AverageHandleTime  float64 `gorm:"not null"`
	TargetServiceLevel float64 `gorm:"not null"`
	TargetWaitTime     float64 `gorm:"not null"`
	AbandonmentRate    float64 `gorm:"not null"`

	BaseModel
}

// TableName 指定表名
func (CapacityParameters) TableName() string { return "capacity_parameters" }
