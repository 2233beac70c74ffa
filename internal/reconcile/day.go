package reconcile

import "time"

// DefaultOffsetHours 运营日分界相对午夜的偏移（小时）
// 05:00 之前的打卡归入前一天，使夜班落在同一个运营日
const DefaultOffsetHours = 5

// PeriodDays 一个对账周期的天数
const PeriodDays = 7

// DayAssigner 运营日分配器
type DayAssigner struct {
	offset time.Duration
}

// NewDayAssigner 创建运营日分配器
func NewDayAssigner(offsetHours int) DayAssigner {
	return DayAssigner{offset: time.Duration(offsetHours) * time.Hour}
}

// Assign 计算 date(ts - offset)；ts 为零值（无法解析）时返回 ok=false
func (a DayAssigner) Assign(ts time.Time) (time.Time, bool) {
	if ts.IsZero() {
		return time.Time{}, false
	}
	return dateOf(ts.Add(-a.offset)), true
}

// dateOf 截取日历日期（保留原时区）
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PeriodDates 返回从 start 开始的连续 n 个日期
func PeriodDates(start time.Time, n int) []time.Time {
	start = dateOf(start)
	days := make([]time.Time, n)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// dayKey 运营日分桶键，与时区无关
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
