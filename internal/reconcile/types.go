package reconcile

import (
	"strings"
	"time"
)

// ── 打卡事件类型 ──

// EventType 打卡事件类型
type EventType int

const (
	EventOther EventType = iota
	EventStartWork
	EventSiteIn
	EventEndWork
	EventSiteOut
)

var eventTypeLabels = map[EventType]string{
	EventOther:     "Other",
	EventStartWork: "Start Work",
	EventSiteIn:    "Site In",
	EventEndWork:   "End Work",
	EventSiteOut:   "Site Out",
}

func (t EventType) String() string {
	if s, ok := eventTypeLabels[t]; ok {
		return s
	}
	return "Other"
}

// ParseEventType 将打卡记录中的类型文本映射为 EventType
// 忽略大小写与空白差异："start work" / "StartWork" / " Start  Work " 均识别为 EventStartWork
func ParseEventType(label string) EventType {
	key := strings.ToUpper(strings.Join(strings.Fields(label), ""))
	switch key {
	case "STARTWORK":
		return EventStartWork
	case "SITEIN":
		return EventSiteIn
	case "ENDWORK":
		return EventEndWork
	case "SITEOUT":
		return EventSiteOut
	default:
		return EventOther
	}
}

// RawEvent 一条原始打卡记录（只读）
type RawEvent struct {
	Name      string
	Timestamp time.Time // 零值表示时间无法解析
	Type      EventType
	Remark    string
	Row       int // 来源文件行号，仅用于排错
}

// RosterEntry 花名册中的一名员工
type RosterEntry struct {
	Name string // 原始姓名（保留展示大小写）
	Key  string // NormalizeName(Name)
}

// ── 登录/登出判定结果 ──

// MarkKind 区分真实时间与各类哨兵状态
type MarkKind int

const (
	MarkNoData MarkKind = iota
	MarkPresent
	MarkNoLogin
	MarkNoLogout
)

const (
	noLoginText  = "NO LOGIN"
	noLogoutText = "NO LOGOUT"
)

// Mark 登录/登出判定结果（tagged union）
// 仅当 Kind == MarkPresent 时 At 有意义
type Mark struct {
	Kind MarkKind
	At   time.Time
}

// Present 构造真实时间结果
func Present(at time.Time) Mark { return Mark{Kind: MarkPresent, At: at} }

// IsPresent 是否为真实时间
func (m Mark) IsPresent() bool { return m.Kind == MarkPresent }

// IsSentinel 是否为 NO LOGIN / NO LOGOUT
func (m Mark) IsSentinel() bool { return m.Kind == MarkNoLogin || m.Kind == MarkNoLogout }

// String 输出展示文本：""、"HH:MM"、"NO LOGIN"、"NO LOGOUT"
func (m Mark) String() string {
	switch m.Kind {
	case MarkPresent:
		return m.At.Format("15:04")
	case MarkNoLogin:
		return noLoginText
	case MarkNoLogout:
		return noLogoutText
	default:
		return ""
	}
}

// DayRecord 某员工在某个运营日的判定结果
type DayRecord struct {
	Date   time.Time
	Events []RawEvent // 按时间升序
	Login  Mark
	Logout Mark
}

// HasLogin 是否存在真实登录时间
func (d DayRecord) HasLogin() bool { return d.Login.IsPresent() }

// HasLogout 是否存在真实登出时间
func (d DayRecord) HasLogout() bool { return d.Logout.IsPresent() }

// IsEmpty 登录登出均无数据
func (d DayRecord) IsEmpty() bool {
	return d.Login.Kind == MarkNoData && d.Logout.Kind == MarkNoData
}

// ── 异常与备注 ──

// Reason 异常原因
type Reason string

const (
	ReasonMissingLogout      Reason = "Missing Logout"
	ReasonLogoutWithoutLogin Reason = "Logout without Login"
	ReasonMissingSiteOut     Reason = "Missing Site Out"
)

// ExceptionRecord 异常记录
type ExceptionRecord struct {
	Employee string
	Date     time.Time
	Time     Mark
	Reason   Reason
}

// RemarkRecord 带备注的打卡记录（与是否被选为登录/登出无关）
type RemarkRecord struct {
	Employee  string
	Date      time.Time
	Time      Mark
	HasLogin  bool
	HasLogout bool
	Remark    string
}

// SummaryRow 汇总表中的一行：一名员工 × 周期内每一天
type SummaryRow struct {
	Employee string
	Days     []DayRecord
}

// Values 按天顺序展开为 login/logout 交替序列（7 天即 14 个值）
func (r SummaryRow) Values() []Mark {
	out := make([]Mark, 0, len(r.Days)*2)
	for _, d := range r.Days {
		out = append(out, d.Login, d.Logout)
	}
	return out
}

// Result 一次对账的完整输出
type Result struct {
	Days       []time.Time
	Rows       []SummaryRow
	Exceptions []ExceptionRecord
	Remarks    []RemarkRecord
	Unassigned int // 时间无法解析、未分配运营日的记录数
}
