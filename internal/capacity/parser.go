package capacity

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/admVeloHub/front-console-sub000/pkg/errors"
)

// ── 区间文件解析器 ──────────────────────────────────────────────
//
// 职责：将上传的 CSV / XLSX 转为 IntervalRecord 列表。
//
//   - 首个非空行命中表头关键字时跳过
//   - 区间列接受整数小时或 H:MM[:SS]（仅保留小时），以及 Excel 的日内小数时间
//   - 话量列接受任意非负数值（含 pt-BR 千分位），四舍五入为整数
//   - 非法行记录到 Rejected 后继续，全部行非法时返回 ValidationError
// ─────────────────────────────────────────────────────────────

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

var (
	intervalHeaderWords = []string{"interval", "hour", "hora"}
	volumeHeaderWords   = []string{"quantity", "volume", "call", "quantidade", "chamada"}
)

// RowError 单行解析失败原因
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("linha %d: %s", e.Row, e.Reason)
}

// ParseResult 解析结果
type ParseResult struct {
	DayType       DayType          `json:"dayType"`
	Records       []IntervalRecord `json:"records"`
	Rejected      []RowError       `json:"rejected"`
	HeaderSkipped bool             `json:"headerSkipped"`
}

// ParseIntervals 解析上传文件，filename 仅用于判断扩展名
func ParseIntervals(data []byte, filename string, dayType DayType) (*ParseResult, error) {
	rows, err := readRows(data, filename)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{DayType: dayType}
	headerChecked := false

	for _, sr := range rows {
		row, line := sr.cells, sr.line
		if isBlankRow(row) {
			continue
		}
		if !headerChecked {
			headerChecked = true
			if isHeaderRow(row) {
				result.HeaderSkipped = true
				continue
			}
		}

		rec, reason := parseRow(row)
		if reason != "" {
			result.Rejected = append(result.Rejected, RowError{Row: line, Reason: reason})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		ve := apperrors.NewValidationError()
		for _, r := range result.Rejected {
			ve.Add(r.String())
		}
		ve.Add(fmt.Sprintf("%s: nenhum registro válido encontrado no arquivo", dayType.Label()))
		return result, ve
	}

	if ve := validateRecords(result.Records); ve != nil {
		return result, ve
	}

	return result, nil
}

// sourceRow 一行单元格及其在原文件中的行号（从 1 开始）
type sourceRow struct {
	line  int
	cells []string
}

// readRows 按格式读取为带行号的行
func readRows(data []byte, filename string) ([]sourceRow, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return readXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		// 旧版 BIFF .xls，excelize 不支持
		return nil, fmt.Errorf("%w: salve a planilha como .xlsx ou .csv", ErrUnsupportedFormat)
	case ext == ".xlsx":
		return nil, fmt.Errorf("%w: arquivo .xlsx corrompido", ErrUnsupportedFormat)
	default:
		return readCSV(data)
	}
}

func readXLSX(data []byte) ([]sourceRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler a planilha %q: %w", sheet, err)
	}
	// GetRows 保留中间的空行，下标即行号
	out := make([]sourceRow, 0, len(rows))
	for i, cells := range rows {
		out = append(out, sourceRow{line: i + 1, cells: cells})
	}
	return out, nil
}

func readCSV(data []byte) ([]sourceRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows []sourceRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: CSV ilegível: %v", ErrUnsupportedFormat, err)
		}
		// csv.Reader 会跳过空行，行号取自记录的实际位置
		line, _ := r.FieldPos(0)
		rows = append(rows, sourceRow{line: line, cells: rec})
	}
	return rows, nil
}

// sniffDelimiter 以首行出现次数最多的分隔符为准，默认逗号
func sniffDelimiter(data []byte) rune {
	firstLine := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}
	best, bestCount := ',', bytes.Count(firstLine, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(firstLine, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isHeaderRow(row []string) bool {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	for _, w := range intervalHeaderWords {
		if strings.Contains(first, w) {
			return true
		}
	}
	if len(row) > 1 {
		second := strings.ToLower(strings.TrimSpace(row[1]))
		for _, w := range volumeHeaderWords {
			if strings.Contains(second, w) {
				return true
			}
		}
	}
	return false
}

// parseRow 返回记录或失败原因
func parseRow(row []string) (IntervalRecord, string) {
	if len(row) < 2 {
		return IntervalRecord{}, "esperadas 2 colunas (intervalo, volume)"
	}
	label := strings.TrimSpace(row[0])
	hour, err := parseInterval(label)
	if err != nil {
		return IntervalRecord{}, err.Error()
	}
	volume, err := parseVolume(row[1])
	if err != nil {
		return IntervalRecord{}, err.Error()
	}
	return IntervalRecord{Interval: hour, Label: label, Volume: volume}, ""
}

func parseInterval(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("intervalo vazio")
	}

	// "08:00 - 08:59" 形式只取起始时间
	if strings.Contains(s, ":") && strings.Contains(s, "-") {
		s = strings.TrimSpace(s[:strings.Index(s, "-")])
	}

	var hour int
	switch {
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, fmt.Errorf("intervalo inválido %q", s)
		}
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || m < 0 || m > 59 {
			return 0, fmt.Errorf("intervalo inválido %q", s)
		}
		hour = h
	default:
		if n, err := strconv.Atoi(s); err == nil {
			hour = n
			break
		}
		// Excel 未格式化的时间单元格：一天中的小数比例
		f, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil || f < 0:
			return 0, fmt.Errorf("intervalo inválido %q", s)
		case f < 1:
			hour = int(math.Floor(f*24 + 1e-9))
		case f == math.Trunc(f):
			hour = int(f)
		default:
			return 0, fmt.Errorf("intervalo inválido %q", s)
		}
	}

	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hora fora do intervalo 0-23: %d", hour)
	}
	return hour, nil
}

// pt-BR 千分位写法："1.234" 与 "1.234,5"
var (
	thousandsOnly    = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+$`)
	thousandsDecimal = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+,\d*$`)
)

func parseVolume(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("volume vazio")
	}
	normalized, ok := normalizeNumber(s)
	if !ok {
		return 0, fmt.Errorf("volume inválido %q", s)
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("volume inválido %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("volume negativo %q", s)
	}
	return int(math.Round(f)), nil
}

// normalizeNumber 将 pt-BR 数字转为 ParseFloat 可接受的格式
//
// 仅含逗号时逗号为小数点；点按三位分组时视为千分位，否则为小数点。
func normalizeNumber(s string) (string, bool) {
	hasDot, hasComma := strings.Contains(s, "."), strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if !thousandsDecimal.MatchString(s) {
			return "", false
		}
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1), true
	case hasComma:
		if strings.Count(s, ",") > 1 {
			return "", false
		}
		return strings.Replace(s, ",", ".", 1), true
	case hasDot && thousandsOnly.MatchString(s):
		return strings.ReplaceAll(s, ".", ""), true
	default:
		return s, true
	}
}

// validateRecords 解析后的结构复核
func validateRecords(records []IntervalRecord) *apperrors.ValidationError {
	ve := apperrors.NewValidationError()
	for i, r := range records {
		if r.Interval < 0 || r.Interval > 23 {
			ve.Add(fmt.Sprintf("registro %d: hora fora do intervalo 0-23", i+1))
		}
		if r.Volume < 0 {
			ve.Add(fmt.Sprintf("registro %d: volume negativo", i+1))
		}
	}
	if ve.Empty() {
		return nil
	}
	return ve
}
