package repository

import (
	"context"

	"gorm.io/gorm"

	"timesheet-auditor/internal/model"
)

// AuditRunRepository 对账运行记录数据访问接口
type AuditRunRepository interface {
	Create(ctx context.Context, run *model.AuditRun) error
	GetByID(ctx context.Context, id string) (*model.AuditRun, error)
	List(ctx context.Context, offset, limit int) ([]model.AuditRun, int64, error)
}

// auditRunRepo AuditRunRepository 的 GORM 实现
type auditRunRepo struct {
	db *gorm.DB
}

// NewAuditRunRepo 创建 AuditRunRepository 实例
func NewAuditRunRepo(db *gorm.DB) AuditRunRepository {
	return &auditRunRepo{db: db}
}

func (r *auditRunRepo) Create(ctx context.Context, run *model.AuditRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *auditRunRepo) GetByID(ctx context.Context, id string) (*model.AuditRun, error) {
	var run model.AuditRun
	err := r.db.WithContext(ctx).
		Where("audit_run_id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *auditRunRepo) List(ctx context.Context, offset, limit int) ([]model.AuditRun, int64, error) {
	var runs []model.AuditRun
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditRun{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}
