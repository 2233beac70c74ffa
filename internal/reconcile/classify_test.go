package reconcile

import "testing"

func ev(typ EventType, day, hhmm string) RawEvent {
	return RawEvent{Name: "X", Timestamp: at(day, hhmm), Type: typ}
}

func TestClassify(t *testing.T) {
	const d = "2026-01-23"
	tests := []struct {
		name       string
		events     []RawEvent
		wantLogin  string
		wantLogout string
	}{
		{
			name:       "StartWork 优先于更早的 SiteIn",
			events:     []RawEvent{ev(EventSiteIn, d, "05:30"), ev(EventStartWork, d, "07:00"), ev(EventStartWork, d, "06:10"), ev(EventEndWork, d, "15:00")},
			wantLogin:  "06:10",
			wantLogout: "15:00",
		},
		{
			name:       "无 StartWork 时取最早 SiteIn",
			events:     []RawEvent{ev(EventSiteIn, d, "09:00"), ev(EventSiteIn, d, "06:00"), ev(EventSiteOut, d, "14:00")},
			wantLogin:  "06:00",
			wantLogout: "14:00",
		},
		{
			name:       "EndWork 与 SiteOut 合并取最晚",
			events:     []RawEvent{ev(EventStartWork, d, "06:00"), ev(EventSiteOut, d, "18:30"), ev(EventEndWork, d, "17:00")},
			wantLogin:  "06:00",
			wantLogout: "18:30",
		},
		{
			name:       "只有登录",
			events:     []RawEvent{ev(EventSiteIn, d, "06:00")},
			wantLogin:  "06:00",
			wantLogout: "NO LOGOUT",
		},
		{
			name:       "只有登出",
			events:     []RawEvent{ev(EventEndWork, d, "23:50")},
			wantLogin:  "NO LOGIN",
			wantLogout: "23:50",
		},
		{
			name:       "未知类型整天清空",
			events:     []RawEvent{ev(EventOther, d, "08:00"), ev(EventOther, d, "12:00")},
			wantLogin:  "",
			wantLogout: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login, logout := Classify(tt.events)
			if login.String() != tt.wantLogin {
				t.Errorf("login = %q，期望 %q", login.String(), tt.wantLogin)
			}
			if logout.String() != tt.wantLogout {
				t.Errorf("logout = %q，期望 %q", logout.String(), tt.wantLogout)
			}
		})
	}
}

func TestClassify_EmptyDayIsNoDataNotSentinel(t *testing.T) {
	login, logout := Classify([]RawEvent{ev(EventOther, "2026-01-23", "08:00")})
	if login.Kind != MarkNoData || logout.Kind != MarkNoData {
		t.Errorf("期望 NoData/NoData，实际 %v/%v", login.Kind, logout.Kind)
	}
}

func TestClassify_TieBreakIsStable(t *testing.T) {
	first := RawEvent{Name: "X", Timestamp: at("2026-01-23", "06:00"), Type: EventStartWork, Row: 1}
	second := RawEvent{Name: "X", Timestamp: at("2026-01-23", "06:00"), Type: EventStartWork, Row: 2}
	outA := RawEvent{Name: "X", Timestamp: at("2026-01-23", "15:00"), Type: EventEndWork, Row: 3}
	outB := RawEvent{Name: "X", Timestamp: at("2026-01-23", "15:00"), Type: EventSiteOut, Row: 4}

	for i := 0; i < 3; i++ {
		login, logout := Classify([]RawEvent{first, second, outA, outB})
		if !login.At.Equal(first.Timestamp) || !logout.At.Equal(outB.Timestamp) {
			t.Fatalf("并列选择不稳定: %v / %v", login, logout)
		}
	}
}
