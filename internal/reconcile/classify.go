package reconcile

// Classify 判定某员工某运营日的登录与登出
//
// 规则：
//   - 登录：最早的 Start Work；没有则取最早的 Site In；都没有为 NO LOGIN
//     Start Work 优先级严格高于 Site In，与时间先后无关
//   - 登出：End Work 与 Site Out 合并后取最晚一条；没有为 NO LOGOUT
//   - 两者均为哨兵时整天清空为无数据
//
// 同类型同时间戳的并列：登录取输入顺序中的第一条，登出取最后一条。
func Classify(events []RawEvent) (login, logout Mark) {
	var start, siteIn, out *RawEvent
	var hasStart, hasSite, hasOut bool
	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case EventStartWork:
			if !hasStart || ev.Timestamp.Before(start.Timestamp) {
				start, hasStart = ev, true
			}
		case EventSiteIn:
			if !hasSite || ev.Timestamp.Before(siteIn.Timestamp) {
				siteIn, hasSite = ev, true
			}
		case EventEndWork, EventSiteOut:
			if !hasOut || !ev.Timestamp.Before(out.Timestamp) {
				out, hasOut = ev, true
			}
		}
	}

	switch {
	case hasStart:
		login = Present(start.Timestamp)
	case hasSite:
		login = Present(siteIn.Timestamp)
	default:
		login = Mark{Kind: MarkNoLogin}
	}

	if hasOut {
		logout = Present(out.Timestamp)
	} else {
		logout = Mark{Kind: MarkNoLogout}
	}

	if login.Kind == MarkNoLogin && logout.Kind == MarkNoLogout {
		return Mark{}, Mark{}
	}
	return login, logout
}
