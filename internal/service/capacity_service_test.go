package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/internal/capacity"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
	apperrors "github.com/admVeloHub/front-console-sub000/pkg/errors"
)

// ── 测试辅助 ──

func setupTestCapacityService() (*capacityService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewCapacityService(repo, zap.NewNop()).(*capacityService)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	return svc, mocks
}

func csvUpload(name, body string) *Upload {
	return &Upload{Filename: name, Data: []byte(body)}
}

func floatPtr(v float64) *float64 { return &v }

// ── 参数 ──

func TestCapacityService_GetParameters_Defaults(t *testing.T) {
	svc, mocks := setupTestCapacityService()

	p, err := svc.GetParameters(context.Background(), "uid-001")
	if err != nil {
		t.Fatalf("GetParameters 应成功: %v", err)
	}
	if p.Weekdays.EffectiveHours != 6.5 {
		t.Errorf("期望工作日有效工时 6.5，实际=%v", p.Weekdays.EffectiveHours)
	}
	if mocks.params.upserts != 0 {
		t.Errorf("只读不应写库，实际写入 %d 次", mocks.params.upserts)
	}
}

func TestCapacityService_SetParameter_WriteThrough(t *testing.T) {
	svc, mocks := setupTestCapacityService()
	ctx := context.Background()

	resp, err := svc.SetParameter(ctx, "uid-001", &dto.SetParameterRequest{
		Category: "weekdays", Field: "hoursWorked", Value: floatPtr(9),
	})
	if err != nil {
		t.Fatalf("SetParameter 应成功: %v", err)
	}
	if !resp.Applied {
		t.Error("期望 Applied=true")
	}
	if resp.Parameters.Weekdays.EffectiveHours != 7.5 {
		t.Errorf("期望有效工时 7.5，实际=%v", resp.Parameters.Weekdays.EffectiveHours)
	}
	if mocks.params.upserts != 1 {
		t.Errorf("期望写库 1 次，实际=%d", mocks.params.upserts)
	}

	// 新的请求从数据库读回
	p, _ := svc.GetParameters(ctx, "uid-001")
	if p.Weekdays.HoursWorked != 9 {
		t.Errorf("期望持久化的 hoursWorked=9，实际=%v", p.Weekdays.HoursWorked)
	}
	// 其他用户不受影响
	other, _ := svc.GetParameters(ctx, "uid-002")
	if other.Weekdays.HoursWorked != 8 {
		t.Errorf("其他用户应为默认值，实际=%v", other.Weekdays.HoursWorked)
	}
}

func TestCapacityService_SetParameter_Ignored(t *testing.T) {
	svc, mocks := setupTestCapacityService()

	resp, err := svc.SetParameter(context.Background(), "uid-001", &dto.SetParameterRequest{
		Category: "weekdays", Field: "hoursWorked", Value: floatPtr(-2),
	})
	if err != nil {
		t.Fatalf("非法值应被忽略而不是报错: %v", err)
	}
	if resp.Applied {
		t.Error("期望 Applied=false")
	}
	if mocks.params.upserts != 0 {
		t.Errorf("被忽略的修改不应写库，实际=%d", mocks.params.upserts)
	}
}

func TestCapacityService_ResetParameters(t *testing.T) {
	svc, mocks := setupTestCapacityService()
	ctx := context.Background()

	_, _ = svc.SetParameter(ctx, "uid-001", &dto.SetParameterRequest{Category: "global", Field: "averageHandleTime", Value: floatPtr(7)})
	p, err := svc.ResetParameters(ctx, "uid-001")
	if err != nil {
		t.Fatalf("ResetParameters 应成功: %v", err)
	}
	if p.Global.AverageHandleTime != 4 {
		t.Errorf("期望恢复 TMA=4，实际=%v", p.Global.AverageHandleTime)
	}
	if mocks.params.rows["uid-001"].AverageHandleTime != 4 {
		t.Error("重置结果应写回数据库")
	}
}

func TestCapacityService_StorageError(t *testing.T) {
	svc, mocks := setupTestCapacityService()
	mocks.params.err = errors.New("db down")

	if _, err := svc.GetParameters(context.Background(), "uid-001"); err == nil {
		t.Error("数据库错误应向上返回")
	}
}

// ── 计算 ──

func TestCapacityService_Calculate_Success(t *testing.T) {
	svc, _ := setupTestCapacityService()

	resp, err := svc.Calculate(context.Background(), "uid-001",
		csvUpload("uteis.csv", "Intervalo,Quantidade\n8,100\n9,abc\n10,45\n"),
		csvUpload("sabado.csv", "8,20\n"),
	)
	if err != nil {
		t.Fatalf("Calculate 应成功: %v", err)
	}
	if resp.Report.Weekdays.Summary.TotalHeadcount != 13 {
		t.Errorf("期望工作日总人数 13，实际=%d", resp.Report.Weekdays.Summary.TotalHeadcount)
	}
	if resp.Report.Saturday.Summary.TotalHeadcount != 2 {
		t.Errorf("期望周六总人数 2，实际=%d", resp.Report.Saturday.Summary.TotalHeadcount)
	}
	wd := resp.Uploads["weekdays"]
	if wd.Records != 2 || len(wd.Rejected) != 1 || !wd.HeaderSkipped {
		t.Errorf("工作日上传摘要不正确: %+v", wd)
	}
	if resp.Uploads["saturday"].Rejected == nil {
		t.Error("Rejected 应为空切片而非 nil")
	}
}

func TestCapacityService_Calculate_UsesStoredParameters(t *testing.T) {
	svc, _ := setupTestCapacityService()
	ctx := context.Background()

	_, _ = svc.SetParameter(ctx, "uid-001", &dto.SetParameterRequest{Category: "saturday", Field: "safeCapacity", Value: floatPtr(5)})
	resp, err := svc.Calculate(ctx, "uid-001", csvUpload("a.csv", "8,10\n"), csvUpload("b.csv", "8,10\n"))
	if err != nil {
		t.Fatalf("Calculate 应成功: %v", err)
	}
	if resp.Report.Saturday.Results[0].HeadcountRequired != 2 {
		t.Errorf("周六应使用用户参数 safeCapacity=5，实际人数=%d", resp.Report.Saturday.Results[0].HeadcountRequired)
	}
}

func TestCapacityService_Calculate_MissingFile(t *testing.T) {
	svc, _ := setupTestCapacityService()

	_, err := svc.Calculate(context.Background(), "uid-001", csvUpload("a.csv", "8,10\n"), nil)
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("期望 ErrMissingFile，实际: %v", err)
	}
	_, err = svc.Calculate(context.Background(), "uid-001", csvUpload("a.csv", ""), csvUpload("b.csv", "8,10\n"))
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("空文件期望 ErrMissingFile，实际: %v", err)
	}
}

func TestCapacityService_Calculate_AllRowsInvalid(t *testing.T) {
	svc, _ := setupTestCapacityService()

	_, err := svc.Calculate(context.Background(), "uid-001", csvUpload("a.csv", "x,y\n"), csvUpload("b.csv", "8,10\n"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestCapacityService_Calculate_LegacyXLS(t *testing.T) {
	svc, _ := setupTestCapacityService()

	xls := &Upload{Filename: "antigo.xls", Data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0, 0, 0, 0}}
	_, err := svc.Calculate(context.Background(), "uid-001", xls, csvUpload("b.csv", "8,10\n"))
	if !errors.Is(err, capacity.ErrUnsupportedFormat) {
		t.Errorf("期望 ErrUnsupportedFormat，实际: %v", err)
	}
}

// ── 导出 ──

func TestCapacityService_ExportWorkbook(t *testing.T) {
	svc, _ := setupTestCapacityService()

	file, err := svc.ExportWorkbook(context.Background(), "uid-001", csvUpload("a.csv", "8,10\n"), csvUpload("b.csv", "8,10\n"))
	if err != nil {
		t.Fatalf("ExportWorkbook 应成功: %v", err)
	}
	if file.Filename != "Dimensionamento_CallCenter_20240305T140709Z.xlsx" {
		t.Errorf("文件名不正确: %s", file.Filename)
	}
	if file.ContentType != contentTypeXLSX {
		t.Errorf("Content-Type 不正确: %s", file.ContentType)
	}
	if !bytes.HasPrefix(file.Data, []byte("PK")) {
		t.Error("xlsx 应以 ZIP 头开始")
	}
}

func TestCapacityService_ExportPDF(t *testing.T) {
	svc, _ := setupTestCapacityService()

	file, err := svc.ExportPDF(context.Background(), "uid-001", csvUpload("a.csv", "8,10\n"), csvUpload("b.csv", "8,10\n"))
	if err != nil {
		t.Fatalf("ExportPDF 应成功: %v", err)
	}
	if file.ContentType != contentTypePDF {
		t.Errorf("Content-Type 不正确: %s", file.ContentType)
	}
	if !bytes.HasPrefix(file.Data, []byte("%PDF")) {
		t.Error("PDF 头不正确")
	}
}
