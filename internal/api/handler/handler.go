package handler

import "timesheet-auditor/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Audit *AuditHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Audit: NewAuditHandler(svc.Audit),
	}
}
