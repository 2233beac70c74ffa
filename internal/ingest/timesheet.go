package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"timesheet-auditor/internal/reconcile"
)

// ── 打卡明细导入错误 ──

var (
	ErrUnsupportedFormat  = errors.New("不支持的文件格式（仅支持 .xlsx / .csv）")
	ErrTimesheetNoData    = errors.New("打卡明细无数据行（第一行为表头）")
	ErrTimesheetBadHeader = errors.New("打卡明细表头缺少必要列（Name / Date Time 或 Date+Time / Type）")
)

// RowError 单行解析失败（不中断整体导入）
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Timesheet 打卡明细导入结果
type Timesheet struct {
	Events []reconcile.RawEvent
	Errors []RowError
}

// ReadTimesheet 按扩展名解析打卡明细（.csv 或 Excel）
func ReadTimesheet(r io.Reader, filename string) (*Timesheet, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm", "":
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, err
	}
	return parseTimesheetRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("无法解析CSV文件: %w", err)
	}
	// Excel 导出的 "CSV UTF-8" 以 BOM 开头
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	// 原始值：日期单元格以序列号返回，文本单元格原样返回
	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return rows, nil
}

// timesheetColumns 表头列索引，-1 表示不存在
type timesheetColumns struct {
	name, dateTime, date, clock, typ, remark int
}

// parseTimesheetHeader 解析表头（支持灵活列序）
func parseTimesheetHeader(header []string) timesheetColumns {
	cols := timesheetColumns{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.Join(strings.Fields(h), " ")) {
		case "name", "employee name":
			cols.name = i
		case "date time", "datetime", "date/time":
			cols.dateTime = i
		case "date":
			cols.date = i
		case "time":
			cols.clock = i
		case "type", "event type":
			cols.typ = i
		case "remark", "remarks":
			cols.remark = i
		}
	}
	return cols
}

func parseTimesheetRows(rows [][]string) (*Timesheet, error) {
	if len(rows) < 2 {
		return nil, ErrTimesheetNoData
	}

	cols := parseTimesheetHeader(rows[0])
	hasStamp := cols.dateTime >= 0 || (cols.date >= 0 && cols.clock >= 0)
	if cols.name < 0 || cols.typ < 0 || !hasStamp {
		return nil, ErrTimesheetBadHeader
	}

	ts := &Timesheet{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1

		name := cellAt(row, cols.name)
		typ := cellAt(row, cols.typ)
		// 跳过全空行
		if name == "" && typ == "" && cellAt(row, cols.dateTime) == "" && cellAt(row, cols.date) == "" {
			continue
		}

		ev := reconcile.RawEvent{
			Name:   name,
			Type:   reconcile.ParseEventType(typ),
			Remark: cellAt(row, cols.remark),
			Row:    rowNum,
		}

		var ok bool
		if cols.dateTime >= 0 {
			ev.Timestamp, ok = ParseDateTime(cellAt(row, cols.dateTime))
		} else {
			ev.Timestamp, ok = ParseSplitDateTime(cellAt(row, cols.date), cellAt(row, cols.clock))
		}
		if !ok {
			ts.Errors = append(ts.Errors, RowError{Row: rowNum, Reason: "打卡时间无法解析"})
		}
		ts.Events = append(ts.Events, ev)
	}

	if len(ts.Events) == 0 {
		return nil, ErrTimesheetNoData
	}
	return ts, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
