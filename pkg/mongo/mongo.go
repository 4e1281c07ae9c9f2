package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
)

// Client MongoDB 客户端封装（活动日志与分析快照所在的文档库）
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	cfg      config.MongoConfig
	logger   *zap.Logger
}

// NewClient 建立连接、Ping 校验并创建所需索引
func NewClient(cfg *config.MongoConfig, logger *zap.Logger) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping no MongoDB falhou: %w", err)
	}

	c := &Client{
		client:   client,
		database: client.Database(cfg.Database),
		cfg:      *cfg,
		logger:   logger,
	}
	c.ensureIndexes(ctx)

	logger.Info("MongoDB 连接成功", zap.String("database", cfg.Database))
	return c, nil
}

// ensureIndexes 索引创建失败不影响启动，仅记录告警
func (c *Client) ensureIndexes(ctx context.Context) {
	activity := c.ActivityCollection()
	_, err := activity.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		c.logger.Warn("创建活动日志索引失败", zap.Error(err))
	}

	snapshots := c.SnapshotCollection()
	_, err = snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "generatedAt", Value: -1}},
	})
	if err != nil {
		c.logger.Warn("创建分析快照索引失败", zap.Error(err))
	}
}

// ActivityCollection 用户活动日志集合
func (c *Client) ActivityCollection() *mongo.Collection {
	return c.database.Collection(c.cfg.ActivityCollection)
}

// SnapshotCollection 定时分析快照集合
func (c *Client) SnapshotCollection() *mongo.Collection {
	return c.database.Collection(c.cfg.SnapshotCollection)
}

// Close 断开连接
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}
