package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/api/handler"
	"github.com/admVeloHub/front-console-sub000/internal/api/middleware"
	"github.com/admVeloHub/front-console-sub000/internal/metrics"
	"github.com/admVeloHub/front-console-sub000/internal/permission"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
	"github.com/admVeloHub/front-console-sub000/pkg/response"
)

// 上传与重新计算接口的限流
const (
	uploadRateLimit  = 30
	uploadRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不限流（Redis 不可用时降级）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			// 容量规划模块
			capacity := authorized.Group("/capacity")
			capacity.Use(middleware.RequirePermission(permission.Capacity))
			{
				capacity.GET("/parameters", h.Capacity.GetParameters)
				capacity.PUT("/parameters", h.Capacity.SetParameter)
				capacity.POST("/parameters/reset", h.Capacity.ResetParameters)

				uploads := capacity.Group("")
				uploads.Use(middleware.RateLimit(limiter, uploadRateLimit, uploadRateWindow))
				{
					uploads.POST("/calculate", h.Capacity.Calculate)
					uploads.POST("/export", h.Capacity.ExportWorkbook)
					uploads.POST("/export/pdf", h.Capacity.ExportPDF)
				}
			}

			// 机器人分析模块
			bot := authorized.Group("/bot-analises")
			bot.Use(middleware.RequirePermission(permission.BotAnalises))
			{
				bot.GET("/metricas-gerais", h.Analytics.GeneralMetrics)
				bot.GET("/perguntas-frequentes", h.Analytics.TopQuestions)
				bot.GET("/ranking-agentes", h.Analytics.Ranking)
				bot.GET("/atividades", h.Analytics.Activity)
				bot.POST("/cache/ativar", h.Analytics.ActivateCache)
				bot.POST("/cache/desativar", h.Analytics.DeactivateCache)
				bot.POST("/executar", middleware.RateLimit(limiter, 5, time.Minute), h.Analytics.RunNow)
				bot.GET("/ultima-execucao", h.Analytics.LastRun)
			}

			// 用户模块
			users := authorized.Group("/users")
			users.Use(middleware.RequirePermission(permission.Usuarios))
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.PUT("/:id/permissions", h.User.UpdatePermissions)
			}
		}
	}

	return r
}
