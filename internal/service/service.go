package service

import (
	"go.uber.org/zap"

	"timesheet-auditor/config"
	"timesheet-auditor/internal/reconcile"
	"timesheet-auditor/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Audit AuditService
}

// NewService 创建 Service 聚合
// repo 为 nil 时运行历史相关接口返回 ErrAuditHistoryDisabled
func NewService(
	cfg *config.Config,
	engine *reconcile.Engine,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		Audit: NewAuditService(cfg, engine, repo, logger),
	}
}
