package repository

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User             UserRepository
	CapacityParams   CapacityParameterRepository
	ActivityLog      ActivityLogRepository
	AnalysisSnapshot AnalysisSnapshotRepository
}

// NewRepository 创建 Repository 聚合
// activity / snapshots 为 mongo 集合，关系数据走 gorm
func NewRepository(db *gorm.DB, activity, snapshots *mongo.Collection) *Repository {
	return &Repository{
		User:             NewUserRepo(db),
		CapacityParams:   NewCapacityParameterRepo(db),
		ActivityLog:      NewActivityLogRepo(activity),
		AnalysisSnapshot: NewAnalysisSnapshotRepo(snapshots),
	}
}
