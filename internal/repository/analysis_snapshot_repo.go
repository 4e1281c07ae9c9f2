package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admVeloHub/front-console-sub000/internal/model"
)

// AnalysisSnapshotRepository 分析快照存储接口
type AnalysisSnapshotRepository interface {
	Insert(ctx context.Context, snap *model.AnalysisSnapshot) error
	Latest(ctx context.Context) (*model.AnalysisSnapshot, error)
}

type analysisSnapshotRepo struct {
	coll *mongo.Collection
}

// NewAnalysisSnapshotRepo 创建 AnalysisSnapshotRepository 实例
func NewAnalysisSnapshotRepo(coll *mongo.Collection) AnalysisSnapshotRepository {
	return &analysisSnapshotRepo{coll: coll}
}

func (r *analysisSnapshotRepo) Insert(ctx context.Context, snap *model.AnalysisSnapshot) error {
	_, err := r.coll.InsertOne(ctx, snap)
	return err
}

// Latest 最近一次快照；没有时返回 mongo.ErrNoDocuments
func (r *analysisSnapshotRepo) Latest(ctx context.Context) (*model.AnalysisSnapshot, error) {
	var snap model.AnalysisSnapshot
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, err
	}
	return &snap, nil
}
