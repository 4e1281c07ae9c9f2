package capacity

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Resumo"

var resultHeaders = []string{"Intervalo", "Hora", "Volume", "HCs Necessários", "Utilização (%)", "Status"}

// statusLabel 健康状态的报表文案
func statusLabel(s HealthStatus) string {
	switch s {
	case Critical:
		return "Crítico"
	case Attention:
		return "Atenção"
	default:
		return "Saudável"
	}
}

// ExportFilename 生成导出文件名，时间戳为 UTC 的 ISO8601 基本格式，不含冒号
func ExportFilename(now time.Time, ext string) string {
	stamp := now.UTC().Format("20060102T150405Z")
	return fmt.Sprintf("Dimensionamento_CallCenter_%s%s", stamp, ext)
}

// ExportWorkbook 导出 Excel：每个日期类型一张表，外加汇总表
//
// 输出格式：
//   - Sheet "Dias Úteis" / "Sábado"：区间 × (话量, 人数, 利用率, 状态)
//   - Sheet "Resumo"：两种日期类型的汇总与参数
func ExportWorkbook(report *Report) (*bytes.Buffer, error) {
	if report == nil || len(report.Days()) == 0 {
		return nil, ErrNoResults
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1634FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao criar estilo: %w", err)
	}
	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("falha ao criar estilo: %w", err)
	}

	for _, day := range report.Days() {
		if err := writeDaySheet(f, day, headerStyle, percentStyle); err != nil {
			return nil, err
		}
	}
	if err := writeSummarySheet(f, report, headerStyle, percentStyle); err != nil {
		return nil, err
	}

	// 删除默认 Sheet1，并以第一张日报为活动表
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(report.Days()[0].DayType.Label()); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("falha ao gerar planilha: %w", err)
	}
	return buf, nil
}

func writeDaySheet(f *excelize.File, day *DayReport, headerStyle, percentStyle int) error {
	sheet := day.DayType.Label()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("falha ao criar aba %q: %w", sheet, err)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "E", 18)
	f.SetColWidth(sheet, "F", "F", 12)

	for i, h := range resultHeaders {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(resultHeaders)-1), 1), headerStyle)

	row := 2
	for _, r := range day.Results {
		f.SetCellValue(sheet, cell("A", row), r.Label)
		f.SetCellValue(sheet, cell("B", row), r.Interval)
		f.SetCellValue(sheet, cell("C", row), r.Volume)
		f.SetCellValue(sheet, cell("D", row), r.HeadcountRequired)
		f.SetCellValue(sheet, cell("E", row), r.UtilizationPercent)
		f.SetCellValue(sheet, cell("F", row), statusLabel(r.HealthStatus))
		row++
	}
	if len(day.Results) > 0 {
		f.SetCellStyle(sheet, "E2", cell("E", row-1), percentStyle)
	}

	// 合计行
	f.SetCellValue(sheet, cell("A", row), "Total")
	f.SetCellValue(sheet, cell("C", row), day.Summary.TotalVolume)
	f.SetCellValue(sheet, cell("D", row), day.Summary.TotalHeadcount)
	f.SetCellValue(sheet, cell("E", row), day.Summary.AverageUtilization)
	f.SetCellStyle(sheet, cell("A", row), cell("D", row), headerStyle)
	f.SetCellStyle(sheet, cell("E", row), cell("E", row), percentStyle)
	return nil
}

func writeSummarySheet(f *excelize.File, report *Report, headerStyle, percentStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("falha ao criar aba %q: %w", summarySheet, err)
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "C", 16)

	f.SetCellValue(summarySheet, "A1", "Indicador")
	col := 1
	for _, day := range report.Days() {
		f.SetCellValue(summarySheet, cell(colName(col), 1), day.DayType.Label())
		col++
	}
	f.SetCellStyle(summarySheet, "A1", cell(colName(col-1), 1), headerStyle)

	type line struct {
		label string
		value func(d *DayReport) interface{}
	}
	lines := []line{
		{"Total de HCs", func(d *DayReport) interface{} { return d.Summary.TotalHeadcount }},
		{"Volume total", func(d *DayReport) interface{} { return d.Summary.TotalVolume }},
		{"Utilização média (%)", func(d *DayReport) interface{} { return d.Summary.AverageUtilization }},
		{"Intervalos", func(d *DayReport) interface{} { return d.Summary.RecordCount }},
		{"Hora de pico", func(d *DayReport) interface{} { return d.Summary.PeakInterval }},
		{"HCs no pico", func(d *DayReport) interface{} { return d.Summary.PeakHeadcount }},
		{"Intervalos críticos", func(d *DayReport) interface{} { return d.Summary.StatusCounts[Critical] }},
		{"Intervalos em atenção", func(d *DayReport) interface{} { return d.Summary.StatusCounts[Attention] }},
		{"Horas trabalhadas", func(d *DayReport) interface{} { return d.Parameters.HoursWorked }},
		{"Horas efetivas", func(d *DayReport) interface{} { return d.Parameters.EffectiveHours }},
		{"Capacidade por hora", func(d *DayReport) interface{} { return d.Parameters.CapacityPerHour }},
		{"Capacidade segura", func(d *DayReport) interface{} { return d.Parameters.SafeCapacity }},
	}

	row := 2
	for _, l := range lines {
		f.SetCellValue(summarySheet, cell("A", row), l.label)
		col := 1
		for _, day := range report.Days() {
			f.SetCellValue(summarySheet, cell(colName(col), row), l.value(day))
			col++
		}
		row++
	}
	f.SetCellStyle(summarySheet, "B4", cell(colName(len(report.Days())), 4), percentStyle)

	row++
	g := report.Global
	globals := []struct {
		label string
		value float64
	}{
		{"TMA (min)", g.AverageHandleTime},
		{"Nível de serviço alvo (%)", g.TargetServiceLevel},
		{"Tempo de espera alvo (s)", g.TargetWaitTime},
		{"Taxa de abandono (%)", g.AbandonmentRate},
	}
	for _, gl := range globals {
		f.SetCellValue(summarySheet, cell("A", row), gl.label)
		f.SetCellValue(summarySheet, cell("B", row), gl.value)
		row++
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
