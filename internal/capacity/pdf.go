package capacity

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
)

// ExportPDF 导出 PDF 报表：封面汇总 + 每个日期类型一页明细
func ExportPDF(report *Report, generatedAt time.Time) (*bytes.Buffer, error) {
	if report == nil || len(report.Days()) == 0 {
		return nil, ErrNoResults
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	// 核心字体为 cp1252，葡语重音需转码
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	// 封面与汇总
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(22, 52, 255)
	pdf.CellFormat(0, 14, tr("Dimensionamento do Call Center"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, tr("Gerado em "+generatedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 234, 255)
	pdf.CellFormat(70, 8, tr("Indicador"), "1", 0, "L", true, 0, "")
	for _, day := range report.Days() {
		pdf.CellFormat(50, 8, tr(day.DayType.Label()), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	summaryRow := func(label string, value func(d *DayReport) string) {
		pdf.CellFormat(70, 7, tr(label), "1", 0, "L", false, 0, "")
		for _, day := range report.Days() {
			pdf.CellFormat(50, 7, value(day), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	summaryRow("Total de HCs", func(d *DayReport) string { return fmt.Sprintf("%d", d.Summary.TotalHeadcount) })
	summaryRow("Volume total", func(d *DayReport) string { return fmt.Sprintf("%d", d.Summary.TotalVolume) })
	summaryRow("Utilização média", func(d *DayReport) string { return fmt.Sprintf("%.2f%%", d.Summary.AverageUtilization) })
	summaryRow("Hora de pico", func(d *DayReport) string { return fmt.Sprintf("%02dh", d.Summary.PeakInterval) })
	summaryRow("Horas efetivas", func(d *DayReport) string { return fmt.Sprintf("%.2f", d.Parameters.EffectiveHours) })
	summaryRow("Capacidade segura", func(d *DayReport) string { return fmt.Sprintf("%.2f", d.Parameters.SafeCapacity) })

	// 明细页
	widths := []float64{35, 30, 40, 40, 35}
	headers := []string{"Hora", "Volume", "HCs Necessários", "Utilização", "Status"}
	for _, day := range report.Days() {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(day.DayType.Label()), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 10)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, r := range day.Results {
			setStatusColor(pdf, r.HealthStatus)
			pdf.CellFormat(widths[0], 7, fmt.Sprintf("%02d:00", r.Interval), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", r.Volume), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", r.HeadcountRequired), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f%%", r.UtilizationPercent), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 7, tr(statusLabel(r.HealthStatus)), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("falha ao gerar PDF: %w", err)
	}
	return &buf, nil
}

func setStatusColor(pdf *gofpdf.Fpdf, s HealthStatus) {
	switch s {
	case Critical:
		pdf.SetTextColor(198, 40, 40)
	case Attention:
		pdf.SetTextColor(230, 126, 34)
	default:
		pdf.SetTextColor(46, 125, 50)
	}
}
