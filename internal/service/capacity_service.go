package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/admVeloHub/front-console-sub000/internal/capacity"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/metrics"
	"github.com/admVeloHub/front-console-sub000/internal/model"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
)

// ── 容量规划业务错误 ──

var (
	ErrMissingFile = errors.New("envie os dois arquivos (dias úteis e sábado) antes de calcular")
)

// Upload 一个已读入内存的上传文件
type Upload struct {
	Filename string
	Data     []byte
}

// ExportFile 导出文件
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// CapacityService 容量规划业务接口
type CapacityService interface {
	GetParameters(ctx context.Context, ownerID string) (capacity.StaffingParameters, error)
	SetParameter(ctx context.Context, ownerID string, req *dto.SetParameterRequest) (*dto.SetParameterResponse, error)
	ResetParameters(ctx context.Context, ownerID string) (capacity.StaffingParameters, error)
	Calculate(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*dto.CalculateResponse, error)
	ExportWorkbook(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*ExportFile, error)
	ExportPDF(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*ExportFile, error)
}

type capacityService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCapacityService 创建 CapacityService 实例
func NewCapacityService(repo *repository.Repository, logger *zap.Logger) CapacityService {
	return &capacityService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── 参数 ──────────────────────

// store 每次请求按用户构造，参数以数据库为准
func (s *capacityService) store(ownerID string) *capacity.ParameterStore {
	return capacity.NewParameterStore(&paramStorage{repo: s.repo.CapacityParams, ownerID: ownerID})
}

func (s *capacityService) GetParameters(ctx context.Context, ownerID string) (capacity.StaffingParameters, error) {
	p, err := s.store(ownerID).Get(ctx)
	if err != nil {
		s.logger.Error("读取排班参数失败", zap.String("owner_id", ownerID), zap.Error(err))
		return capacity.StaffingParameters{}, err
	}
	return p, nil
}

func (s *capacityService) SetParameter(ctx context.Context, ownerID string, req *dto.SetParameterRequest) (*dto.SetParameterResponse, error) {
	store := s.store(ownerID)
	applied, err := store.Set(ctx, req.Category, req.Field, *req.Value)
	if err != nil {
		s.logger.Error("保存排班参数失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	if !applied {
		s.logger.Debug("参数修改被忽略",
			zap.String("category", req.Category),
			zap.String("field", req.Field),
			zap.Float64("value", *req.Value),
		)
	}
	p, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SetParameterResponse{Applied: applied, Parameters: p}, nil
}

func (s *capacityService) ResetParameters(ctx context.Context, ownerID string) (capacity.StaffingParameters, error) {
	p, err := s.store(ownerID).Reset(ctx)
	if err != nil {
		s.logger.Error("重置排班参数失败", zap.String("owner_id", ownerID), zap.Error(err))
		return capacity.StaffingParameters{}, err
	}
	s.logger.Info("排班参数已重置", zap.String("owner_id", ownerID))
	return p, nil
}

// ────────────────────── 计算 ──────────────────────

func (s *capacityService) Calculate(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*dto.CalculateResponse, error) {
	report, uploads, err := s.buildReport(ctx, ownerID, weekdays, saturday)
	if err != nil {
		return nil, err
	}
	return &dto.CalculateResponse{Report: report, Uploads: uploads}, nil
}

func (s *capacityService) ExportWorkbook(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*ExportFile, error) {
	report, _, err := s.buildReport(ctx, ownerID, weekdays, saturday)
	if err != nil {
		return nil, err
	}
	buf, err := capacity.ExportWorkbook(report)
	if err != nil {
		return nil, err
	}
	metrics.CapacityExportsTotal.WithLabelValues("xlsx").Inc()
	return &ExportFile{
		Filename:    capacity.ExportFilename(s.now(), ".xlsx"),
		ContentType: contentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func (s *capacityService) ExportPDF(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*ExportFile, error) {
	report, _, err := s.buildReport(ctx, ownerID, weekdays, saturday)
	if err != nil {
		return nil, err
	}
	now := s.now()
	buf, err := capacity.ExportPDF(report, now)
	if err != nil {
		return nil, err
	}
	metrics.CapacityExportsTotal.WithLabelValues("pdf").Inc()
	return &ExportFile{
		Filename:    capacity.ExportFilename(now, ".pdf"),
		ContentType: contentTypePDF,
		Data:        buf.Bytes(),
	}, nil
}

// buildReport 解析两份上传并按用户参数计算
func (s *capacityService) buildReport(ctx context.Context, ownerID string, weekdays, saturday *Upload) (*capacity.Report, map[string]dto.UploadSummary, error) {
	if weekdays == nil || saturday == nil || len(weekdays.Data) == 0 || len(saturday.Data) == 0 {
		metrics.CapacityCalculationsTotal.WithLabelValues("missing_file").Inc()
		return nil, nil, ErrMissingFile
	}

	wd, err := s.parse(weekdays, capacity.Weekdays)
	if err != nil {
		metrics.CapacityCalculationsTotal.WithLabelValues("invalid_file").Inc()
		return nil, nil, err
	}
	sat, err := s.parse(saturday, capacity.Saturday)
	if err != nil {
		metrics.CapacityCalculationsTotal.WithLabelValues("invalid_file").Inc()
		return nil, nil, err
	}

	params, err := s.GetParameters(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	report, err := capacity.CalculateReport(wd.Records, sat.Records, params)
	if err != nil {
		metrics.CapacityCalculationsTotal.WithLabelValues("invalid_input").Inc()
		return nil, nil, err
	}

	for _, day := range report.Days() {
		metrics.CapacityHeadcountRequired.WithLabelValues(string(day.DayType)).Set(float64(day.Summary.TotalHeadcount))
	}
	metrics.CapacityCalculationsTotal.WithLabelValues("ok").Inc()

	uploads := map[string]dto.UploadSummary{
		string(capacity.Weekdays): summarizeUpload(weekdays.Filename, wd),
		string(capacity.Saturday): summarizeUpload(saturday.Filename, sat),
	}
	return report, uploads, nil
}

func (s *capacityService) parse(u *Upload, dayType capacity.DayType) (*capacity.ParseResult, error) {
	res, err := capacity.ParseIntervals(u.Data, u.Filename, dayType)
	if res != nil {
		for _, rej := range res.Rejected {
			s.logger.Warn("丢弃无效行",
				zap.String("day_type", string(dayType)),
				zap.String("filename", u.Filename),
				zap.Int("row", rej.Row),
				zap.String("reason", rej.Reason),
			)
		}
		metrics.CapacityRejectedRowsTotal.WithLabelValues(string(dayType)).Add(float64(len(res.Rejected)))
	}
	if err != nil {
		return nil, err
	}
	metrics.CapacityParsedRecordsTotal.WithLabelValues(string(dayType)).Add(float64(len(res.Records)))
	return res, nil
}

func summarizeUpload(filename string, res *capacity.ParseResult) dto.UploadSummary {
	rejected := res.Rejected
	if rejected == nil {
		rejected = []capacity.RowError{}
	}
	return dto.UploadSummary{
		Filename:      filename,
		Records:       len(res.Records),
		Rejected:      rejected,
		HeaderSkipped: res.HeaderSkipped,
	}
}

// ────────────────────── 参数持久化适配 ──────────────────────

// paramStorage 将 capacity.Storage 落到 capacity_parameters 表
type paramStorage struct {
	repo    repository.CapacityParameterRepository
	ownerID string
}

func (p *paramStorage) Load(ctx context.Context) (*capacity.StaffingParameters, bool, error) {
	row, err := p.repo.GetByOwner(ctx, p.ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("falha ao carregar parâmetros: %w", err)
	}
	params := paramsFromModel(row)
	return &params, true, nil
}

func (p *paramStorage) Save(ctx context.Context, params *capacity.StaffingParameters) error {
	row := paramsToModel(p.ownerID, params)
	if err := p.repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("falha ao salvar parâmetros: %w", err)
	}
	return nil
}

func paramsFromModel(m *model.CapacityParameters) capacity.StaffingParameters {
	p := capacity.StaffingParameters{
		Weekdays: capacity.DayParameters{
			HoursWorked:     m.WeekdaysHoursWorked,
			LunchBreak:      m.WeekdaysLunchBreak,
			OtherBreaks:     m.WeekdaysOtherBreaks,
			CapacityPerHour: m.WeekdaysCapacityPerHour,
			SafeCapacity:    m.WeekdaysSafeCapacity,
		},
		Saturday: capacity.DayParameters{
			HoursWorked:     m.SaturdayHoursWorked,
			LunchBreak:      m.SaturdayLunchBreak,
			OtherBreaks:     m.SaturdayOtherBreaks,
			CapacityPerHour: m.SaturdayCapacityPerHour,
			SafeCapacity:    m.SaturdaySafeCapacity,
		},
		Global: capacity.GlobalParameters{
			AverageHandleTime:  m.AverageHandleTime,
			TargetServiceLevel: m.TargetServiceLevel,
			TargetWaitTime:     m.TargetWaitTime,
			AbandonmentRate:    m.AbandonmentRate,
		},
	}
	p.Weekdays.Recompute()
	p.Saturday.Recompute()
	return p
}

func paramsToModel(ownerID string, p *capacity.StaffingParameters) *model.CapacityParameters {
	owner := ownerID
	return &model.CapacityParameters{
		OwnerID:                 ownerID,
		WeekdaysHoursWorked:     p.Weekdays.HoursWorked,
		WeekdaysLunchBreak:      p.Weekdays.LunchBreak,
		WeekdaysOtherBreaks:     p.Weekdays.OtherBreaks,
		WeekdaysCapacityPerHour: p.Weekdays.CapacityPerHour,
		WeekdaysSafeCapacity:    p.Weekdays.SafeCapacity,
		SaturdayHoursWorked:     p.Saturday.HoursWorked,
		SaturdayLunchBreak:      p.Saturday.LunchBreak,
		SaturdayOtherBreaks:     p.Saturday.OtherBreaks,
		SaturdayCapacityPerHour: p.Saturday.CapacityPerHour,
		SaturdaySafeCapacity:    p.Saturday.SafeCapacity,
		AverageHandleTime:       p.Global.AverageHandleTime,
		TargetServiceLevel:      p.Global.TargetServiceLevel,
		TargetWaitTime:          p.Global.TargetWaitTime,
		AbandonmentRate:         p.Global.AbandonmentRate,
		BaseModel: model.BaseModel{
			CreatedBy: &owner,
			UpdatedAt: time.Now(),
			UpdatedBy: &owner,
		},
	}
}
