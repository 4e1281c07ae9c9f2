package service

import (
	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Capacity    CapacityService
	Analytics   AnalyticsService
	AnalysisJob AnalysisJobService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	aggregator *analytics.Aggregator,
	lastRun LastRunStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(repo, jwtMgr, logger),
		User:        NewUserService(repo, logger),
		Capacity:    NewCapacityService(repo, logger),
		Analytics:   NewAnalyticsService(&cfg.Analytics, aggregator, logger),
		AnalysisJob: NewAnalysisJobService(&cfg.Jobs, &cfg.Analytics, repo, aggregator, lastRun, logger),
	}
}
