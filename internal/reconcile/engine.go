package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidConfig 对账引擎配置非法
var ErrInvalidConfig = errors.New("对账引擎配置非法")

// Config 对账引擎的不可变配置，构造时传入
type Config struct {
	OffsetHours          int  // 运营日偏移，通常为 DefaultOffsetHours
	Days                 int  // 周期天数，0 表示 PeriodDays
	Workers              int  // 按员工并行的 worker 数，0 表示 1
	DetectMissingSiteOut bool // 是否启用 Missing Site Out 检查
}

// DefaultConfig 默认引擎配置
func DefaultConfig() Config {
	return Config{
		OffsetHours:          DefaultOffsetHours,
		Days:                 PeriodDays,
		Workers:              1,
		DetectMissingSiteOut: true,
	}
}

// Engine 对账引擎
//
// 设计说明：
//   - 单次运行无共享可变状态，多次运行相同输入得到相同输出
//   - 员工之间相互独立，Workers > 1 时按员工并行；结果按花名册下标写回，顺序与串行一致
type Engine struct {
	cfg      Config
	assigner DayAssigner
}

// NewEngine 校验配置并创建引擎
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Days == 0 {
		cfg.Days = PeriodDays
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.OffsetHours < 0 || cfg.OffsetHours > 23 {
		return nil, fmt.Errorf("%w: offset_hours=%d 必须在 0-23 之间", ErrInvalidConfig, cfg.OffsetHours)
	}
	if cfg.Days < 1 || cfg.Days > PeriodDays {
		return nil, fmt.Errorf("%w: days=%d 必须在 1-%d 之间", ErrInvalidConfig, cfg.Days, PeriodDays)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: workers=%d 不能小于 1", ErrInvalidConfig, cfg.Workers)
	}
	return &Engine{cfg: cfg, assigner: NewDayAssigner(cfg.OffsetHours)}, nil
}

// Config 返回引擎配置副本
func (e *Engine) Config() Config { return e.cfg }

// Assigner 返回引擎使用的运营日分配器
func (e *Engine) Assigner() DayAssigner { return e.assigner }

// employeeResult 单个员工的对账结果
type employeeResult struct {
	row        SummaryRow
	exceptions []ExceptionRecord
	remarks    []RemarkRecord
}

// ═══════════════════════════════════════════════════════════
// Reconcile：花名册 × 周期内每一天
// ═══════════════════════════════════════════════════════════
//
// 流程：
//   1. 按比对键分组打卡记录，每名员工只稳定排序一次
//   2. 按运营日分桶（时间无法解析的记录计入 Unassigned）
//   3. 对每名员工每一天：Classify → Detect → 收集备注

func (e *Engine) Reconcile(ctx context.Context, start time.Time, roster []RosterEntry, events []RawEvent) (*Result, error) {
	days := PeriodDates(start, e.cfg.Days)

	byKey, unassigned := e.bucket(events)

	results := make([]employeeResult, len(roster))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, entry := range roster {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.reconcileEmployee(entry, days, byKey[entry.Key])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Days:       days,
		Rows:       make([]SummaryRow, 0, len(roster)),
		Unassigned: unassigned,
	}
	for _, r := range results {
		res.Rows = append(res.Rows, r.row)
		res.Exceptions = append(res.Exceptions, r.exceptions...)
		res.Remarks = append(res.Remarks, r.remarks...)
	}
	return res, nil
}

// bucket 比对键 → 运营日 → 按时间升序的记录
func (e *Engine) bucket(events []RawEvent) (map[string]map[string][]RawEvent, int) {
	grouped := make(map[string][]RawEvent)
	unassigned := 0
	for _, ev := range events {
		if ev.Timestamp.IsZero() {
			unassigned++
			continue
		}
		key := NormalizeName(ev.Name)
		grouped[key] = append(grouped[key], ev)
	}

	byKey := make(map[string]map[string][]RawEvent, len(grouped))
	for key, evs := range grouped {
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].Timestamp.Before(evs[j].Timestamp)
		})
		byDay := make(map[string][]RawEvent)
		for _, ev := range evs {
			day, _ := e.assigner.Assign(ev.Timestamp)
			byDay[dayKey(day)] = append(byDay[dayKey(day)], ev)
		}
		byKey[key] = byDay
	}
	return byKey, unassigned
}

func (e *Engine) reconcileEmployee(entry RosterEntry, days []time.Time, byDay map[string][]RawEvent) employeeResult {
	res := employeeResult{
		row: SummaryRow{Employee: entry.Name, Days: make([]DayRecord, 0, len(days))},
	}
	for _, day := range days {
		evs := byDay[dayKey(day)]
		rec := DayRecord{Date: day, Events: evs}
		if len(evs) > 0 {
			rec.Login, rec.Logout = Classify(evs)
			res.exceptions = append(res.exceptions,
				Detect(entry.Name, day, rec.Login, rec.Logout, evs, e.cfg.DetectMissingSiteOut)...)
			res.remarks = append(res.remarks, collectRemarks(entry.Name, rec)...)
		}
		res.row.Days = append(res.row.Days, rec)
	}
	return res
}

// collectRemarks 当天每条带非空备注的记录各生成一行
func collectRemarks(employee string, rec DayRecord) []RemarkRecord {
	var out []RemarkRecord
	for _, ev := range rec.Events {
		remark := strings.TrimSpace(ev.Remark)
		if remark == "" {
			continue
		}
		out = append(out, RemarkRecord{
			Employee:  employee,
			Date:      rec.Date,
			Time:      Present(ev.Timestamp),
			HasLogin:  rec.HasLogin(),
			HasLogout: rec.HasLogout(),
			Remark:    remark,
		})
	}
	return out
}
