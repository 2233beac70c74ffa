package service

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"timesheet-auditor/internal/model"
)

// ── Mock AuditRunRepository ──

type mockAuditRunRepo struct {
	runs      map[string]*model.AuditRun
	createErr error
}

func newMockAuditRunRepo() *mockAuditRunRepo {
	return &mockAuditRunRepo{runs: make(map[string]*model.AuditRun)}
}

func (m *mockAuditRunRepo) Create(_ context.Context, run *model.AuditRun) error {
	if m.createErr != nil {
		return m.createErr
	}
	if run.AuditRunID == "" {
		return errors.New("audit_run_id 不能为空")
	}
	m.runs[run.AuditRunID] = run
	return nil
}

func (m *mockAuditRunRepo) GetByID(_ context.Context, id string) (*model.AuditRun, error) {
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuditRunRepo) List(_ context.Context, offset, limit int) ([]model.AuditRun, int64, error) {
	all := make([]model.AuditRun, 0, len(m.runs))
	for _, r := range m.runs {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.AuditRun{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}
