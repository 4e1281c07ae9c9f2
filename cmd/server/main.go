package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/api/handler"
	"github.com/admVeloHub/front-console-sub000/internal/api/middleware"
	"github.com/admVeloHub/front-console-sub000/internal/api/router"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
	"github.com/admVeloHub/front-console-sub000/internal/service"
	"github.com/admVeloHub/front-console-sub000/pkg/database"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
	applogger "github.com/admVeloHub/front-console-sub000/pkg/logger"
	"github.com/admVeloHub/front-console-sub000/pkg/mongo"
	"github.com/admVeloHub/front-console-sub000/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "velohub-console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 MongoDB（活动日志与分析快照）
	mdb, err := mongo.NewClient(&cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("MongoDB 连接失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流与共享缓存将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Aggregator → Service → Handler
	repo := repository.NewRepository(db, mdb.ActivityCollection(), mdb.SnapshotCollection())

	var cache analytics.Cache
	if cfg.Analytics.CacheBackend == "redis" {
		if rdb != nil {
			cache = analytics.NewRedisCache(rdb)
		} else {
			logger.Warn("Redis 不可用，分析缓存回退到内存")
		}
	}
	aggregator := analytics.NewAggregator(repo.ActivityLog, cache, analytics.Config{
		CacheTTL:       cfg.Analytics.CacheTTL,
		MaxCachedDays:  cfg.Analytics.MaxCachedDays,
		RetryAttempts:  cfg.Analytics.RetryAttempts,
		RetryBaseDelay: cfg.Analytics.RetryBaseDelay,
		FetchTimeout:   cfg.Analytics.FetchTimeout,
		Aggregate: analytics.AggregateOptions{
			QuestionAction: cfg.Analytics.QuestionAction,
			TopQuestions:   cfg.Analytics.TopQuestions,
			RankingSize:    cfg.Analytics.RankingSize,
			FeedSize:       cfg.Analytics.FeedSize,
		},
	}, logger)

	var (
		lastRun service.LastRunStore
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		lastRun, limiter = rdb, rdb
	} else {
		lastRun = service.NewSnapshotLastRunStore(repo.AnalysisSnapshot)
	}

	svc := service.NewService(cfg, repo, jwtMgr, aggregator, lastRun, logger)
	h := handler.NewHandler(cfg, svc)

	// 8. 启动定时分析（13:00 / 20:30）
	if err := svc.AnalysisJob.Start(); err != nil {
		logger.Fatal("定时分析启动失败", zap.Error(err))
	}

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待正在执行的定时分析结束
	select {
	case <-svc.AnalysisJob.Stop().Done():
	case <-ctx.Done():
		logger.Warn("定时分析未在超时前结束")
	}

	if err := aggregator.Close(ctx); err != nil {
		logger.Warn("清理分析缓存失败", zap.Error(err))
	}

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	if err := mdb.Close(); err != nil {
		logger.Warn("MongoDB 关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
