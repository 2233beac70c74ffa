package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"timesheet-auditor/internal/reconcile"
)

// ErrRosterNoSheet 花名册工作簿中没有工作表
var ErrRosterNoSheet = errors.New("花名册文件中没有工作表")

// RosterLayout 花名册中姓名所在区域（均为 1-indexed，含首尾）
type RosterLayout struct {
	FirstRow   int
	LastRow    int
	NameColumn int
}

// DefaultRosterLayout 前两行为表头，第 3~100 行第 2 列为姓名
var DefaultRosterLayout = RosterLayout{FirstRow: 3, LastRow: 100, NameColumn: 2}

// Roster 花名册导入结果
type Roster struct {
	Sheet    string   // 实际读取的工作表
	Fallback bool     // 未找到周期对应的工作表，退回第一个工作表
	Names    []string // 原始姓名，按文件顺序，已跳过空白
}

// SheetLabel 周期对应的工作表名，如 "23 Jan - 29 Jan"
func SheetLabel(start time.Time) string {
	end := start.AddDate(0, 0, reconcile.PeriodDays-1)
	return fmt.Sprintf("%d %s - %d %s", start.Day(), start.Format("Jan"), end.Day(), end.Format("Jan"))
}

// ReadRoster 读取花名册
//
// 优先读取 SheetLabel(start) 对应的工作表，不存在时退回第一个工作表（可恢复，不报错）。
func ReadRoster(r io.Reader, start time.Time, layout RosterLayout) (*Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法解析花名册文件: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrRosterNoSheet
	}

	roster := &Roster{Sheet: sheets[0], Fallback: true}
	label := SheetLabel(start)
	for _, s := range sheets {
		if strings.TrimSpace(s) == label {
			roster.Sheet, roster.Fallback = s, false
			break
		}
	}

	rows, err := f.GetRows(roster.Sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %q 失败: %w", roster.Sheet, err)
	}

	col := layout.NameColumn - 1
	for i := layout.FirstRow - 1; i < layout.LastRow && i < len(rows); i++ {
		if name := cellAt(rows[i], col); name != "" {
			roster.Names = append(roster.Names, name)
		}
	}
	return roster, nil
}
