package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	datePattern = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// ParseDateTime 解析打卡时间
//
// 支持：
//   - 文本中任意位置的 YYYY-MM-DD 与 HH:MM（如 "2026-01-23 07:05"、"Fri 2026-01-23 at 07:05"）
//   - Excel 日期序列号（如 "46045.295138"），整数序列号只有日期，与缺少时间的文本同样拒绝
//
// 无法解析时返回 ok=false，调用方应跳过该记录而非给出默认日期。
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, ok := parseDate(s); ok {
		if hh, mm, ok := parseClock(s); ok {
			return d.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute), true
		}
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 {
		if serial == math.Trunc(serial) {
			return time.Time{}, false
		}
		return fromSerial(serial)
	}
	return time.Time{}, false
}

// ParseSplitDateTime 解析分列的日期与时间
func ParseSplitDateTime(dateStr, timeStr string) (time.Time, bool) {
	dateStr, timeStr = strings.TrimSpace(dateStr), strings.TrimSpace(timeStr)

	var day time.Time
	if d, ok := parseDate(dateStr); ok {
		day = d
	} else if serial, err := strconv.ParseFloat(dateStr, 64); err == nil && serial >= 1 {
		t, ok := fromSerial(serial)
		if !ok {
			return time.Time{}, false
		}
		day = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		return time.Time{}, false
	}

	if hh, mm, ok := parseClock(timeStr); ok {
		return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute), true
	}
	// 时间列为 Excel 小数（一天的比例）
	if frac, err := strconv.ParseFloat(timeStr, 64); err == nil && frac >= 0 && frac < 1 {
		return day.Add(time.Duration(frac * float64(24*time.Hour)).Round(time.Minute)), true
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	t := time.Date(y, time.Month(mon), d, 0, 0, 0, 0, time.UTC)
	// 拒绝 2026-02-30 之类被 time.Date 归一化的日期
	if t.Year() != y || int(t.Month()) != mon || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func parseClock(s string) (int, int, bool) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func fromSerial(serial float64) (time.Time, bool) {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	t = t.Round(time.Minute)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}
