package capacity

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/admVeloHub/front-console-sub000/pkg/errors"
)

func TestParseIntervals_CSV(t *testing.T) {
	tests := map[string]struct {
		input        string
		wantRecords  []IntervalRecord
		wantRejected int
		wantHeader   bool
	}{
		"HeaderSkipped": {
			input: "Intervalo,Quantidade\n8,120\n9,150\n",
			wantRecords: []IntervalRecord{
				{Interval: 8, Label: "8", Volume: 120},
				{Interval: 9, Label: "9", Volume: 150},
			},
			wantHeader: true,
		},
		"EnglishHeader": {
			input:       "hour,calls\n10,7\n",
			wantRecords: []IntervalRecord{{Interval: 10, Label: "10", Volume: 7}},
			wantHeader:  true,
		},
		"NoHeader": {
			input:       "8,10\n",
			wantRecords: []IntervalRecord{{Interval: 8, Label: "8", Volume: 10}},
		},
		"InvalidVolumeDropped": {
			input: "Intervalo,Quantidade\n8,120\n9,abc\n10,30\n",
			wantRecords: []IntervalRecord{
				{Interval: 8, Label: "8", Volume: 120},
				{Interval: 10, Label: "10", Volume: 30},
			},
			wantRejected: 1,
			wantHeader:   true,
		},
		"ClockFormat": {
			input: "08:00,5\n13:30,6\n",
			wantRecords: []IntervalRecord{
				{Interval: 8, Label: "08:00", Volume: 5},
				{Interval: 13, Label: "13:30", Volume: 6},
			},
		},
		"RangeLabel": {
			input:       "08:00 - 08:59,42\n",
			wantRecords: []IntervalRecord{{Interval: 8, Label: "08:00 - 08:59", Volume: 42}},
		},
		"SemicolonAndDecimalComma": {
			input:       "Hora;Chamadas\n14;12,6\n",
			wantRecords: []IntervalRecord{{Interval: 14, Label: "14", Volume: 13}},
			wantHeader:  true,
		},
		"ExcelDayFraction": {
			input:       "0.375,9\n",
			wantRecords: []IntervalRecord{{Interval: 9, Label: "0.375", Volume: 9}},
		},
		"BlankLinesAndBOM": {
			input:       "\xEF\xBB\xBF\n\n7,3\n\n",
			wantRecords: []IntervalRecord{{Interval: 7, Label: "7", Volume: 3}},
		},
		"OutOfRangeRejected": {
			input:        "24,10\n8:75,3\n-1,2\n9,-4\n11,1\n",
			wantRecords:  []IntervalRecord{{Interval: 11, Label: "11", Volume: 1}},
			wantRejected: 4,
		},
		"SingleColumnRejected": {
			input:        "8\n9,1\n",
			wantRecords:  []IntervalRecord{{Interval: 9, Label: "9", Volume: 1}},
			wantRejected: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := ParseIntervals([]byte(tc.input), "volumes.csv", Weekdays)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRecords, res.Records)
			assert.Len(t, res.Rejected, tc.wantRejected)
			assert.Equal(t, tc.wantHeader, res.HeaderSkipped)
			assert.Equal(t, Weekdays, res.DayType)
		})
	}
}

func TestParseVolume_BrazilianNumbers(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    int
		wantErr bool
	}{
		"Plain":                {input: "42", want: 42},
		"DecimalDot":           {input: "12.5", want: 13},
		"DecimalComma":         {input: "12,4", want: 12},
		"ThousandsDot":         {input: "1.234", want: 1234},
		"ThousandsMillion":     {input: "1.234.567", want: 1234567},
		"ThousandsWithDecimal": {input: "1.234,5", want: 1235},
		"BadGrouping":          {input: "1.2.3", wantErr: true},
		"BadGroupingComma":     {input: "12.34,5", wantErr: true},
		"TwoCommas":            {input: "1,2,3", wantErr: true},
		"Negative":             {input: "-1.234", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseVolume(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseIntervals_ThousandsSeparatorCSV(t *testing.T) {
	res, err := ParseIntervals([]byte("Hora;Chamadas\n8;1.234\n9;1.234,5\n"), "volumes.csv", Weekdays)
	require.NoError(t, err)
	assert.Equal(t, []IntervalRecord{
		{Interval: 8, Label: "8", Volume: 1234},
		{Interval: 9, Label: "9", Volume: 1235},
	}, res.Records)
	assert.Empty(t, res.Rejected)
}

func TestParseIntervals_RejectedRowKeepsFileLine(t *testing.T) {
	// 第 3、5 行为空行，非法行位于文件第 6 行
	input := "Intervalo,Quantidade\n8,10\n\n9,20\n\n10,abc\n"
	res, err := ParseIntervals([]byte(input), "volumes.csv", Weekdays)
	require.NoError(t, err)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 6, res.Rejected[0].Row)
	assert.Equal(t, "linha 6: "+res.Rejected[0].Reason, res.Rejected[0].String())
}

func TestParseIntervals_XLSXRejectedRowKeepsSheetLine(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Intervalo"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Quantidade"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 8))
	require.NoError(t, f.SetCellValue(sheet, "B2", 10))
	require.NoError(t, f.SetCellValue(sheet, "A5", 9))
	require.NoError(t, f.SetCellValue(sheet, "B5", "abc"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := ParseIntervals(buf.Bytes(), "volumes.xlsx", Weekdays)
	require.NoError(t, err)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 5, res.Rejected[0].Row)
}

func TestParseIntervals_FullDayRoundTrip(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Intervalo,Quantidade\n")
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&sb, "%d,%d\n", h, h*10)
	}

	res, err := ParseIntervals([]byte(sb.String()), "dia.csv", Saturday)
	require.NoError(t, err)
	require.Len(t, res.Records, 24)
	for h, r := range res.Records {
		assert.Equal(t, h, r.Interval)
		assert.Equal(t, h*10, r.Volume)
	}
	assert.Empty(t, res.Rejected)
}

func TestParseIntervals_AllRowsInvalid(t *testing.T) {
	res, err := ParseIntervals([]byte("Intervalo,Quantidade\nx,y\n8,abc\n"), "ruim.csv", Weekdays)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	// 两行失败原因 + 一条汇总
	assert.Len(t, ve.Messages, 3)
	assert.Contains(t, ve.Messages[0], "linha 2")
	assert.Len(t, res.Rejected, 2)
}

func TestParseIntervals_EmptyFile(t *testing.T) {
	_, err := ParseIntervals(nil, "vazio.csv", Weekdays)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseIntervals_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Intervalo", "Quantidade"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{8, 100}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"09:00", 45}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{10, "n/a"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := ParseIntervals(buf.Bytes(), "upload.xlsx", Weekdays)
	require.NoError(t, err)
	assert.True(t, res.HeaderSkipped)
	assert.Equal(t, []IntervalRecord{
		{Interval: 8, Label: "8", Volume: 100},
		{Interval: 9, Label: "09:00", Volume: 45},
	}, res.Records)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 4, res.Rejected[0].Row)
}

func TestParseIntervals_UnsupportedFormats(t *testing.T) {
	t.Run("LegacyXLS", func(t *testing.T) {
		data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0}, 64)...)
		_, err := ParseIntervals(data, "antigo.xls", Weekdays)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("CorruptXLSX", func(t *testing.T) {
		_, err := ParseIntervals([]byte("8,10\n"), "falso.xlsx", Weekdays)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("BrokenZip", func(t *testing.T) {
		_, err := ParseIntervals([]byte("PK\x03\x04garbage"), "quebrado.xlsx", Weekdays)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestRowError_String(t *testing.T) {
	assert.Equal(t, "linha 3: volume vazio", RowError{Row: 3, Reason: "volume vazio"}.String())
}
