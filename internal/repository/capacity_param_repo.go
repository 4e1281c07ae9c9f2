package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/admVeloHub/front-console-sub000/internal/model"
)

// CapacityParameterRepository 排班参数数据访问接口
type CapacityParameterRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*model.CapacityParameters, error)
	Upsert(ctx context.Context, params *model.CapacityParameters) error
}

type capacityParameterRepo struct {
	db *gorm.DB
}

// NewCapacityParameterRepo 创建 CapacityParameterRepository 实例
func NewCapacityParameterRepo(db *gorm.DB) CapacityParameterRepository {
	return &capacityParameterRepo{db: db}
}

func (r *capacityParameterRepo) GetByOwner(ctx context.Context, ownerID string) (*model.CapacityParameters, error) {
	var p model.CapacityParameters
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert 按 owner_id 插入或整体覆盖
func (r *capacityParameterRepo) Upsert(ctx context.Context, params *model.CapacityParameters) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"weekdays_hours_worked", "weekdays_lunch_break", "weekdays_other_breaks",
				"weekdays_capacity_per_hour", "weekdays_safe_capacity",
				"saturday_hours_worked", "saturday_lunch_break", "saturday_other_breaks",
				"saturday_capacity_per_hour", "saturday_safe_capacity",
				"average_handle_time", "target_service_level", "target_wait_time", "abandonment_rate",
				"updated_at", "updated_by",
			}),
		}).
		Create(params).Error
}
