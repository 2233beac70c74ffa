package ingest

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidStartDate 起始日期格式无效
var ErrInvalidStartDate = errors.New("起始日期格式无效，请使用 日_月 格式（如 23_Jan）")

var startDateSeparators = regexp.MustCompile(`[_\s-]+`)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseStartDate 解析周期起始日期
//
// 支持 "23_Jan"、"23 Jan"、"23-January"（取月份前三个字母）以及 ISO "2026-01-23"。
// 不含年份的输入使用 year；year 为 0 时使用当前年份。
func ParseStartDate(input string, year int) (time.Time, error) {
	input = strings.TrimSpace(input)
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t, nil
	}

	parts := startDateSeparators.Split(input, -1)
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidStartDate
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, ErrInvalidStartDate
	}
	mon := strings.ToUpper(parts[1])
	if len(mon) < 3 {
		return time.Time{}, ErrInvalidStartDate
	}
	month, ok := monthAbbrev[mon[:3]]
	if !ok {
		return time.Time{}, ErrInvalidStartDate
	}

	if year == 0 {
		year = time.Now().Year()
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, ErrInvalidStartDate
	}
	return t, nil
}
