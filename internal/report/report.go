package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"timesheet-auditor/internal/reconcile"
)

// ErrRenderFailed 生成报表失败
var ErrRenderFailed = errors.New("生成 Excel 报表失败")

const (
	SheetSummary    = "Summary"
	SheetExceptions = "Exceptions"
	SheetRemarks    = "Remarks"

	maxColWidth = 50
	timeFormat  = "hh:mm"
	dayFormat   = "02 Jan"
	dateFormat  = "2006-01-02"
)

// Filename 建议下载文件名，如 Audit_Report_23_Jan.xlsx
func Filename(start time.Time) string {
	return fmt.Sprintf("Audit_Report_%s.xlsx", start.Format("02_Jan"))
}

// Render 将对账结果渲染为 Excel
//
// 输出格式：
//   - Summary：No | Employee Name | 每天合并表头（Login / Logout 两列）
//     真实时间按 hh:mm 数字格式写入，NO LOGIN / NO LOGOUT 红色加粗，无数据留空
//   - Exceptions：Name | Date | Time | Reason
//   - Remarks：Name | Day | Time | Login | Logout | Remark（仅在有备注时生成）
func Render(res *reconcile.Result) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	steps := []func(*excelize.File, *reconcile.Result) error{
		writeSummary,
		writeExceptions,
		writeRemarks,
	}
	for _, step := range steps {
		if err := step(f, res); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return buf, nil
}

// ── Summary ──

func writeSummary(f *excelize.File, res *reconcile.Result) error {
	const sheet = SheetSummary

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	red, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "FF0000"}})
	if err != nil {
		return err
	}
	numFmt := timeFormat
	clock, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	set := func(col, row int, v interface{}, style int) error {
		name, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(sheet, name, name, style)
		}
		return nil
	}

	// 表头
	if err := set(1, 1, "No", bold); err != nil {
		return err
	}
	if err := set(2, 1, "Employee Name", bold); err != nil {
		return err
	}
	for i, day := range res.Days {
		col := 3 + i*2
		if err := set(col, 1, day.Format(dayFormat), header); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(col, 1)
		to, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
		if err := set(col, 2, "Login", bold); err != nil {
			return err
		}
		if err := set(col+1, 2, "Logout", bold); err != nil {
			return err
		}
	}

	// 数据行
	for r, row := range res.Rows {
		rowNum := r + 3
		if err := set(1, rowNum, r+1, 0); err != nil {
			return err
		}
		if err := set(2, rowNum, row.Employee, 0); err != nil {
			return err
		}
		for c, mark := range row.Values() {
			col := 3 + c
			switch {
			case mark.IsPresent():
				err = set(col, rowNum, dayFraction(mark.At), clock)
			case mark.IsSentinel():
				err = set(col, rowNum, mark.String(), red)
			default:
				continue
			}
			if err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "B", "B", 28)
}

// dayFraction Excel 时间值：一天中的比例
func dayFraction(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) / (24 * 60)
}

// ── Exceptions ──

func writeExceptions(f *excelize.File, res *reconcile.Result) error {
	rows := make([][]interface{}, 0, len(res.Exceptions)+1)
	rows = append(rows, []interface{}{"Name", "Date", "Time", "Reason"})
	for _, x := range res.Exceptions {
		rows = append(rows, []interface{}{x.Employee, x.Date.Format(dateFormat), x.Time.String(), string(x.Reason)})
	}
	return writeTable(f, SheetExceptions, rows)
}

// ── Remarks ──

func writeRemarks(f *excelize.File, res *reconcile.Result) error {
	if len(res.Remarks) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(res.Remarks)+1)
	rows = append(rows, []interface{}{"Name", "Day", "Time", "Login", "Logout", "Remark"})
	for _, r := range res.Remarks {
		rows = append(rows, []interface{}{r.Employee, r.Date.Format(dayFormat), r.Time.String(), yesNo(r.HasLogin), yesNo(r.HasLogout), r.Remark})
	}
	return writeTable(f, SheetRemarks, rows)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// writeTable 新建工作表写入表格：表头加粗，列宽按最长内容 +2，上限 50
func writeTable(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	widths := make([]int, len(rows[0]))
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		for c, v := range row {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
				widths[c] = n
			}
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	for c, w := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}
