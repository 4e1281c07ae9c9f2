package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/admVeloHub/front-console-sub000/internal/capacity"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/service"
	apperrors "github.com/admVeloHub/front-console-sub000/pkg/errors"
	"github.com/admVeloHub/front-console-sub000/pkg/response"
)

// 上传字段名
const (
	formWeekdays = "weekdays"
	formSaturday = "saturday"
)

var errUploadTooLarge = errors.New("arquivo excede o tamanho máximo permitido")

// CapacityHandler 容量规划模块 HTTP 处理器
type CapacityHandler struct {
	capacitySvc    service.CapacityService
	maxUploadBytes int64
}

// NewCapacityHandler 创建 CapacityHandler；maxUploadBytes<=0 时不限制单文件大小
func NewCapacityHandler(capacitySvc service.CapacityService, maxUploadBytes int64) *CapacityHandler {
	return &CapacityHandler{capacitySvc: capacitySvc, maxUploadBytes: maxUploadBytes}
}

// GetParameters 当前用户的排班参数
// GET /api/v1/capacity/parameters
func (h *CapacityHandler) GetParameters(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	params, err := h.capacitySvc.GetParameters(c.Request.Context(), userID)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}
	response.OK(c, params)
}

// SetParameter 修改单个参数，非法输入被忽略并返回 applied=false
// PUT /api/v1/capacity/parameters
func (h *CapacityHandler) SetParameter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parâmetros inválidos")
		return
	}

	result, err := h.capacitySvc.SetParameter(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}
	response.OK(c, result)
}

// ResetParameters 恢复默认参数
// POST /api/v1/capacity/parameters/reset
func (h *CapacityHandler) ResetParameters(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	params, err := h.capacitySvc.ResetParameters(c.Request.Context(), userID)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}
	response.OK(c, params)
}

// Calculate 上传两份区间文件并计算
// POST /api/v1/capacity/calculate
func (h *CapacityHandler) Calculate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	weekdays, saturday, err := h.readUploads(c)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}

	result, err := h.capacitySvc.Calculate(c.Request.Context(), userID, weekdays, saturday)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}
	response.OK(c, result)
}

// ExportWorkbook 导出 Excel 报告
// POST /api/v1/capacity/export
func (h *CapacityHandler) ExportWorkbook(c *gin.Context) {
	h.export(c, h.capacitySvc.ExportWorkbook)
}

// ExportPDF 导出 PDF 报告
// POST /api/v1/capacity/export/pdf
func (h *CapacityHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.capacitySvc.ExportPDF)
}

type exportFunc func(ctx context.Context, ownerID string, weekdays, saturday *service.Upload) (*service.ExportFile, error)

func (h *CapacityHandler) export(c *gin.Context, fn exportFunc) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	weekdays, saturday, err := h.readUploads(c)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}

	file, err := fn(c.Request.Context(), userID, weekdays, saturday)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", file.Filename, url.PathEscape(file.Filename)))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// readUploads 读取两个上传字段，缺失的字段返回 nil 由 Service 统一判定
func (h *CapacityHandler) readUploads(c *gin.Context) (weekdays, saturday *service.Upload, err error) {
	if weekdays, err = h.readUpload(c, formWeekdays); err != nil {
		return nil, nil, err
	}
	if saturday, err = h.readUpload(c, formSaturday); err != nil {
		return nil, nil, err
	}
	return weekdays, saturday, nil
}

func (h *CapacityHandler) readUpload(c *gin.Context, field string) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, errUploadTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("ler upload %s: %w", field, err)
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, errUploadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("ler upload %s: %w", field, err)
	}
	return &service.Upload{Filename: fh.Filename, Data: data}, nil
}

func (h *CapacityHandler) handleCapacityError(c *gin.Context, err error) {
	if ve, ok := apperrors.AsValidation(err); ok {
		response.ErrorWithData(c, http.StatusBadRequest, 30002, "arquivo com linhas inválidas", ve.Messages)
		return
	}
	switch {
	case errors.Is(err, service.ErrMissingFile):
		response.BadRequest(c, 30001, err.Error())
	case errors.Is(err, capacity.ErrUnsupportedFormat):
		response.Error(c, http.StatusUnsupportedMediaType, 30003, err.Error())
	case errors.Is(err, capacity.ErrInvalidInput):
		response.BadRequest(c, 30004, err.Error())
	case errors.Is(err, capacity.ErrNoResults):
		response.BadRequest(c, 30005, err.Error())
	case errors.Is(err, errUploadTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, err.Error())
	default:
		response.InternalError(c)
	}
}
