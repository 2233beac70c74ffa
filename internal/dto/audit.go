package dto

// ── 对账模块请求 ──

// AuditFormatQuery 对账结果输出格式：xlsx（默认，下载报表）或 json（预览）
type AuditFormatQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// ── 对账模块响应 ──

// AuditPreviewResponse 对账结果预览（?format=json）
type AuditPreviewResponse struct {
	RunID          string               `json:"run_id"`
	StartDate      string               `json:"start_date"`
	Days           []string             `json:"days"`
	RosterSheet    string               `json:"roster_sheet"`
	RosterFallback bool                 `json:"roster_fallback"`
	Employees      int                  `json:"employees"`
	ExceptionCount int                  `json:"exception_count"`
	RemarkCount    int                  `json:"remark_count"`
	Unassigned     int                  `json:"unassigned"`
	RowErrors      []RowErrorResponse   `json:"row_errors,omitempty"`
	Summary        []SummaryRowResponse `json:"summary"`
	Exceptions     []ExceptionResponse  `json:"exceptions"`
	Remarks        []RemarkResponse     `json:"remarks,omitempty"`
	ReportFilename string               `json:"report_filename"`
	Cached         bool                 `json:"cached"`
}

// RowErrorResponse 打卡明细中无法解析的行
type RowErrorResponse struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// SummaryRowResponse 汇总行：values 为 7 天 × (Login, Logout) 共 14 个值
// 值为 "HH:MM"、"NO LOGIN"、"NO LOGOUT" 或空串（无数据）
type SummaryRowResponse struct {
	No       int      `json:"no"`
	Employee string   `json:"employee"`
	Values   []string `json:"values"`
}

// ExceptionResponse 异常记录
type ExceptionResponse struct {
	Employee string `json:"employee"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
}

// RemarkResponse 备注记录
type RemarkResponse struct {
	Employee  string `json:"employee"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	HasLogin  bool   `json:"has_login"`
	HasLogout bool   `json:"has_logout"`
	Remark    string `json:"remark"`
}

// AuditRunResponse 对账运行历史
type AuditRunResponse struct {
	RunID          string `json:"run_id"`
	StartDate      string `json:"start_date"`
	TimesheetName  string `json:"timesheet_name"`
	RosterSheet    string `json:"roster_sheet"`
	RosterFallback bool   `json:"roster_fallback"`
	OffsetHours    int    `json:"offset_hours"`
	Employees      int    `json:"employees"`
	Exceptions     int    `json:"exceptions"`
	Remarks        int    `json:"remarks"`
	Unassigned     int    `json:"unassigned"`
	CreatedAt      string `json:"created_at"`
}
