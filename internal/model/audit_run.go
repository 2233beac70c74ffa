package model

import "time"

// AuditRun 对账运行记录表，对应 audit_runs
// 仅保存运行元数据与统计，不保存逐日明细（明细随报表生成后即丢弃）
type AuditRun struct {
	AuditRunID     string    `gorm:"type:uuid;primaryKey"                json:"audit_run_id"`
	StartDate      time.Time `gorm:"type:date;not null;index"            json:"start_date"`
	TimesheetName  string    `gorm:"type:varchar(255);not null"          json:"timesheet_name"`
	RosterSheet    string    `gorm:"type:varchar(100);not null"          json:"roster_sheet"`
	RosterFallback bool      `gorm:"not null;default:false"              json:"roster_fallback"`
	OffsetHours    int       `gorm:"not null"                            json:"offset_hours"`
	Employees      int       `gorm:"not null;default:0"                  json:"employees"`
	Exceptions     int       `gorm:"not null;default:0"                  json:"exceptions"`
	Remarks        int       `gorm:"not null;default:0"                  json:"remarks"`
	Unassigned     int       `gorm:"not null;default:0"                  json:"unassigned"`
	InputDigest    string    `gorm:"type:char(64);not null;index"        json:"input_digest"` // 输入文件 sha256
	BaseModel
}

// TableName 指定表名
func (AuditRun) TableName() string { return "audit_runs" }
