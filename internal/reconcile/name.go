package reconcile

import "strings"

// NormalizeName 姓名比对键：转大写，仅保留 ASCII 字母和数字
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildRoster 按文件顺序构建花名册
//
// 去重策略：同一比对键保留首次出现的位置，姓名取最后一次出现的原始写法
// （last-listed roster row wins）。比对键为空的姓名被跳过。
func BuildRoster(names []string) []RosterEntry {
	index := make(map[string]int, len(names))
	roster := make([]RosterEntry, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			roster[i].Name = name
			continue
		}
		index[key] = len(roster)
		roster = append(roster, RosterEntry{Name: name, Key: key})
	}
	return roster
}
