package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admVeloHub/front-console-sub000/internal/analytics"
)

// ActivityLogRepository 活动日志读取接口，满足 analytics.Fetcher
type ActivityLogRepository interface {
	FetchActivity(ctx context.Context, from, to time.Time) ([]analytics.ActivityLog, error)
}

type activityLogRepo struct {
	coll *mongo.Collection
}

// NewActivityLogRepo 创建 ActivityLogRepository 实例
func NewActivityLogRepo(coll *mongo.Collection) ActivityLogRepository {
	return &activityLogRepo{coll: coll}
}

// FetchActivity 按时间窗口查询，时间倒序
func (r *activityLogRepo) FetchActivity(ctx context.Context, from, to time.Time) ([]analytics.ActivityLog, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("consulta de atividades falhou: %w", err)
	}
	defer cur.Close(ctx)

	var logs []analytics.ActivityLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decodificação de atividades falhou: %w", err)
	}
	return logs, nil
}
