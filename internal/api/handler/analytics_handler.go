package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/service"
	"github.com/admVeloHub/front-console-sub000/pkg/response"
)

// AnalyticsHandler 机器人分析模块 HTTP 处理器
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
	jobSvc       service.AnalysisJobService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService, jobSvc service.AnalysisJobService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc, jobSvc: jobSvc}
}

func bindPeriod(c *gin.Context) (string, bool) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "parâmetros inválidos")
		return "", false
	}
	return q.Periodo, true
}

// GeneralMetrics 总体指标与时间序列
// GET /api/v1/bot-analises/metricas-gerais?periodo=7dias
func (h *AnalyticsHandler) GeneralMetrics(c *gin.Context) {
	period, ok := bindPeriod(c)
	if !ok {
		return
	}
	result, err := h.analyticsSvc.GeneralMetrics(c.Request.Context(), period)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	response.OK(c, result)
}

// TopQuestions 高频问题
// GET /api/v1/bot-analises/perguntas-frequentes
func (h *AnalyticsHandler) TopQuestions(c *gin.Context) {
	period, ok := bindPeriod(c)
	if !ok {
		return
	}
	result, err := h.analyticsSvc.TopQuestions(c.Request.Context(), period)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	response.OK(c, result)
}

// Ranking 坐席排行
// GET /api/v1/bot-analises/ranking-agentes
func (h *AnalyticsHandler) Ranking(c *gin.Context) {
	period, ok := bindPeriod(c)
	if !ok {
		return
	}
	result, err := h.analyticsSvc.Ranking(c.Request.Context(), period)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	response.OK(c, result)
}

// Activity 最近动态
// GET /api/v1/bot-analises/atividades
func (h *AnalyticsHandler) Activity(c *gin.Context) {
	period, ok := bindPeriod(c)
	if !ok {
		return
	}
	result, err := h.analyticsSvc.Activity(c.Request.Context(), period)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	response.OK(c, result)
}

// ActivateCache 进入分析页面
// POST /api/v1/bot-analises/cache/ativar
func (h *AnalyticsHandler) ActivateCache(c *gin.Context) {
	response.OK(c, h.analyticsSvc.ActivateCache())
}

// DeactivateCache 离开分析页面
// POST /api/v1/bot-analises/cache/desativar
func (h *AnalyticsHandler) DeactivateCache(c *gin.Context) {
	result, err := h.analyticsSvc.DeactivateCache(c.Request.Context())
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	response.OK(c, result)
}

// RunNow 手动触发一次定时分析
// POST /api/v1/bot-analises/executar
func (h *AnalyticsHandler) RunNow(c *gin.Context) {
	snap, err := h.jobSvc.RunNow(c.Request.Context(), service.TriggerManual)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	result := &dto.RunResponse{SnapshotID: snap.ID, GeneratedAt: snap.GeneratedAt}
	if snap.Metrics != nil {
		result.Totals = snap.Metrics.Totals
	}
	response.OK(c, result)
}

// LastRun 最近一次定时分析时间
// GET /api/v1/bot-analises/ultima-execucao
func (h *AnalyticsHandler) LastRun(c *gin.Context) {
	at, err := h.jobSvc.LastRun(c.Request.Context())
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	if at != nil {
		utc := at.UTC().Truncate(time.Second)
		at = &utc
	}
	response.OK(c, &dto.LastRunResponse{LastRun: at})
}

func (h *AnalyticsHandler) handleAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrUnknownPeriod):
		response.BadRequest(c, 40001, err.Error())
	default:
		response.InternalError(c)
	}
}
