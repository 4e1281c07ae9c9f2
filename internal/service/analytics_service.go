package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
)

// AnalyticsService 机器人分析业务接口
type AnalyticsService interface {
	GeneralMetrics(ctx context.Context, period string) (*dto.GeneralMetricsResponse, error)
	TopQuestions(ctx context.Context, period string) ([]analytics.QuestionCount, error)
	Ranking(ctx context.Context, period string) ([]analytics.RankingEntry, error)
	Activity(ctx context.Context, period string) ([]analytics.FeedItem, error)
	ActivateCache() *dto.CacheStatusResponse
	DeactivateCache(ctx context.Context) (*dto.CacheStatusResponse, error)
}

type analyticsService struct {
	cfg        *config.AnalyticsConfig
	aggregator *analytics.Aggregator
	logger     *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(cfg *config.AnalyticsConfig, aggregator *analytics.Aggregator, logger *zap.Logger) AnalyticsService {
	return &analyticsService{cfg: cfg, aggregator: aggregator, logger: logger}
}

// metrics 空周期使用默认值
func (s *analyticsService) metrics(ctx context.Context, period string) (*analytics.Metrics, error) {
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	return s.aggregator.Metrics(ctx, period)
}

func (s *analyticsService) GeneralMetrics(ctx context.Context, period string) (*dto.GeneralMetricsResponse, error) {
	m, err := s.metrics(ctx, period)
	if err != nil {
		return nil, err
	}
	return &dto.GeneralMetricsResponse{
		Period:      m.Period,
		Granularity: m.Granularity,
		From:        m.From,
		To:          m.To,
		Totals:      m.Totals,
		Series:      m.Series,
		GeneratedAt: m.GeneratedAt,
	}, nil
}

func (s *analyticsService) TopQuestions(ctx context.Context, period string) ([]analytics.QuestionCount, error) {
	m, err := s.metrics(ctx, period)
	if err != nil {
		return nil, err
	}
	return m.TopQuestions, nil
}

func (s *analyticsService) Ranking(ctx context.Context, period string) ([]analytics.RankingEntry, error) {
	m, err := s.metrics(ctx, period)
	if err != nil {
		return nil, err
	}
	return m.Ranking, nil
}

func (s *analyticsService) Activity(ctx context.Context, period string) ([]analytics.FeedItem, error) {
	m, err := s.metrics(ctx, period)
	if err != nil {
		return nil, err
	}
	return m.Feed, nil
}

// ActivateCache 进入分析页面时调用
func (s *analyticsService) ActivateCache() *dto.CacheStatusResponse {
	s.aggregator.Start()
	return &dto.CacheStatusResponse{Active: true}
}

// DeactivateCache 离开分析页面时调用，最后一个查看者离开后缓存被清空
func (s *analyticsService) DeactivateCache(ctx context.Context) (*dto.CacheStatusResponse, error) {
	if err := s.aggregator.Stop(ctx); err != nil {
		s.logger.Error("停用缓存失败", zap.Error(err))
		return nil, err
	}
	return &dto.CacheStatusResponse{Active: s.aggregator.Active()}, nil
}
