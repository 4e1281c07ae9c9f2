package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/metrics"
	"github.com/admVeloHub/front-console-sub000/internal/model"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
)

// 触发来源
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// LastRunStore 最近执行时间的存储，由 pkg/redis.Client 实现
type LastRunStore interface {
	SetLastRun(ctx context.Context, at time.Time) error
	GetLastRun(ctx context.Context) (time.Time, bool, error)
}

// snapshotLastRun Redis 不可用时以最新快照时间作为执行时间
type snapshotLastRun struct {
	repo repository.AnalysisSnapshotRepository
}

// NewSnapshotLastRunStore 基于快照集合的 LastRunStore
func NewSnapshotLastRunStore(repo repository.AnalysisSnapshotRepository) LastRunStore {
	return &snapshotLastRun{repo: repo}
}

// SetLastRun 快照本身即记录
func (s *snapshotLastRun) SetLastRun(context.Context, time.Time) error { return nil }

func (s *snapshotLastRun) GetLastRun(ctx context.Context) (time.Time, bool, error) {
	snap, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return snap.GeneratedAt, true, nil
}

// AnalysisJobService 每日定时分析（13:00 / 20:30）
type AnalysisJobService interface {
	Start() error
	Stop() context.Context
	RunNow(ctx context.Context, trigger string) (*model.AnalysisSnapshot, error)
	LastRun(ctx context.Context) (*time.Time, error)
}

type analysisJobService struct {
	jobsCfg    *config.JobsConfig
	period     string
	timeout    time.Duration
	repo       *repository.Repository
	aggregator *analytics.Aggregator
	lastRun    LastRunStore
	logger     *zap.Logger

	cron *cron.Cron
	now  func() time.Time
}

// NewAnalysisJobService 创建 AnalysisJobService 实例
func NewAnalysisJobService(
	jobsCfg *config.JobsConfig,
	analyticsCfg *config.AnalyticsConfig,
	repo *repository.Repository,
	aggregator *analytics.Aggregator,
	lastRun LastRunStore,
	logger *zap.Logger,
) AnalysisJobService {
	period := analyticsCfg.SnapshotsPeriod
	if period == "" {
		period = "1dia"
	}
	timeout := analyticsCfg.FetchTimeout * time.Duration(max(analyticsCfg.RetryAttempts, 1)+1)
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &analysisJobService{
		jobsCfg:    jobsCfg,
		period:     period,
		timeout:    timeout,
		repo:       repo,
		aggregator: aggregator,
		lastRun:    lastRun,
		logger:     logger,
		now:        time.Now,
	}
}

// Start 注册 cron 表达式并启动调度；jobs.enabled=false 时什么也不做
func (s *analysisJobService) Start() error {
	if !s.jobsCfg.Enabled {
		s.logger.Info("定时分析已禁用")
		return nil
	}

	loc := time.Local
	if s.jobsCfg.Timezone != "" {
		l, err := time.LoadLocation(s.jobsCfg.Timezone)
		if err != nil {
			return fmt.Errorf("fuso horário inválido %q: %w", s.jobsCfg.Timezone, err)
		}
		loc = l
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	for _, spec := range s.jobsCfg.Specs {
		spec := spec
		if _, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if _, err := s.RunNow(ctx, TriggerCron); err != nil {
				s.logger.Error("定时分析执行失败", zap.String("spec", spec), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("expressão cron inválida %q: %w", spec, err)
		}
	}

	s.cron = c
	c.Start()
	s.logger.Info("定时分析已启动",
		zap.Strings("specs", s.jobsCfg.Specs),
		zap.String("timezone", loc.String()),
	)
	return nil
}

// Stop 停止调度，返回的 ctx 在正在执行的任务结束后完成
func (s *analysisJobService) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// RunNow 计算最新周期指标（不走缓存），写入快照并记录执行时间
func (s *analysisJobService) RunNow(ctx context.Context, trigger string) (*model.AnalysisSnapshot, error) {
	m, err := s.aggregator.Fresh(ctx, s.period)
	if err != nil {
		metrics.AnalysisJobRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := &model.AnalysisSnapshot{
		ID:          uuid.NewString(),
		Period:      s.period,
		Trigger:     trigger,
		GeneratedAt: s.now(),
		Metrics:     m,
	}
	if err := s.repo.AnalysisSnapshot.Insert(ctx, snap); err != nil {
		metrics.AnalysisJobRunsTotal.WithLabelValues("error").Inc()
		s.logger.Error("保存分析快照失败", zap.Error(err))
		return nil, fmt.Errorf("falha ao salvar snapshot: %w", err)
	}

	if err := s.lastRun.SetLastRun(ctx, snap.GeneratedAt); err != nil {
		// 快照已落库，仅记录时间失败不视为任务失败
		s.logger.Warn("记录执行时间失败", zap.Error(err))
	}

	metrics.AnalysisJobRunsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("定时分析完成",
		zap.String("trigger", trigger),
		zap.String("snapshot_id", snap.ID),
		zap.Int("entries", m.Totals.Entries),
	)
	return snap, nil
}

// LastRun 未执行过时返回 nil
func (s *analysisJobService) LastRun(ctx context.Context) (*time.Time, error) {
	t, ok, err := s.lastRun.GetLastRun(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}
