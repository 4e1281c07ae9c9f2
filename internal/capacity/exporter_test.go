package capacity

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	recs := []IntervalRecord{
		{Interval: 8, Label: "08:00", Volume: 100},
		{Interval: 9, Label: "09:00", Volume: 30},
	}
	report, err := CalculateReport(recs, recs[:1], DefaultParameters())
	require.NoError(t, err)
	return report
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "Dimensionamento_CallCenter_20240305T140709Z.xlsx", ExportFilename(now, ".xlsx"))
	assert.Equal(t, "Dimensionamento_CallCenter_20240305T140709Z.pdf", ExportFilename(now, ".pdf"))

	// 非 UTC 时间先换算为 UTC
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2024, 3, 5, 11, 7, 9, 0, saoPaulo)
	name := ExportFilename(local, ".xlsx")
	assert.Equal(t, "Dimensionamento_CallCenter_20240305T140709Z.xlsx", name)
	assert.NotContains(t, name, ":")
}

func TestExportWorkbook(t *testing.T) {
	buf, err := ExportWorkbook(sampleReport(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Dias Úteis", "Sábado", "Resumo"}, f.GetSheetList())

	rows, err := f.GetRows("Dias Úteis")
	require.NoError(t, err)
	require.Len(t, rows, 4) // 表头 + 2 行 + 合计
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, "08:00", rows[1][0])
	assert.Equal(t, "9", rows[1][3])
	assert.Equal(t, "Crítico", rows[1][5])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "12", rows[3][3])

	total, err := f.GetCellValue("Resumo", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12", total)
}

func TestExportWorkbook_NoResults(t *testing.T) {
	_, err := ExportWorkbook(nil)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = ExportWorkbook(&Report{})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestExportPDF(t *testing.T) {
	buf, err := ExportPDF(sampleReport(t), time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	_, err = ExportPDF(&Report{}, time.Now())
	assert.ErrorIs(t, err, ErrNoResults)
}
