package handler

import (
	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Capacity  *CapacityHandler
	Analytics *AnalyticsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User),
		Capacity:  NewCapacityHandler(svc.Capacity, cfg.Capacity.MaxUploadBytes),
		Analytics: NewAnalyticsHandler(svc.Analytics, svc.AnalysisJob),
	}
}
