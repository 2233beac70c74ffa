package reconcile

import "time"

// Detect 根据判定结果生成异常记录
//
// 优先级：
//  1. 有登录（含 NO LOGIN 标记）但 NO LOGOUT → Missing Logout
//  2. 否则 NO LOGIN 且存在登出 → Logout without Login
//
// 另外独立检查：当天有 Site In 却没有任何 Site Out → Missing Site Out，
// 可与上面的异常同时出现。空白日与正常日不产生异常。
func Detect(employee string, date time.Time, login, logout Mark, events []RawEvent, checkSiteOut bool) []ExceptionRecord {
	var out []ExceptionRecord
	emit := func(reason Reason, at Mark) {
		out = append(out, ExceptionRecord{Employee: employee, Date: date, Time: at, Reason: reason})
	}

	switch {
	case logout.Kind == MarkNoLogout && login.Kind != MarkNoData:
		emit(ReasonMissingLogout, anomalyTime(login, logout))
	case login.Kind == MarkNoLogin && logout.Kind != MarkNoData:
		emit(ReasonLogoutWithoutLogin, anomalyTime(logout, login))
	}

	if checkSiteOut && missingSiteOut(events) {
		emit(ReasonMissingSiteOut, anomalyTime(logout, login))
	}
	return out
}

// anomalyTime 异常时间取值策略：优先 primary，非真实时间时退回 fallback，
// 两者都不是真实时间则为无数据
func anomalyTime(primary, fallback Mark) Mark {
	if primary.IsPresent() {
		return primary
	}
	if fallback.IsPresent() {
		return fallback
	}
	return Mark{}
}

func missingSiteOut(events []RawEvent) bool {
	var siteIn bool
	for _, ev := range events {
		switch ev.Type {
		case EventSiteIn:
			siteIn = true
		case EventSiteOut:
			return false
		}
	}
	return siteIn
}
