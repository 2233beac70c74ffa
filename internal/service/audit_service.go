package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timesheet-auditor/config"
	"timesheet-auditor/internal/ingest"
	"timesheet-auditor/internal/model"
	"timesheet-auditor/internal/reconcile"
	"timesheet-auditor/internal/report"
	"timesheet-auditor/internal/repository"
)

// ── 对账模块业务错误 ──

var (
	ErrAuditInvalidStartDate = errors.New("起始日期格式无效")
	ErrAuditTimesheetInvalid = errors.New("打卡明细文件无效")
	ErrAuditRosterInvalid    = errors.New("花名册文件无效")
	ErrAuditEmptyRoster      = errors.New("花名册中没有员工姓名")
	ErrAuditRenderFailed     = errors.New("生成对账报表失败")
	ErrAuditHistoryDisabled  = errors.New("未启用运行历史存储")
	ErrAuditRunNotFound      = errors.New("对账运行记录不存在")
)

// AuditInput 一次对账的输入
type AuditInput struct {
	StartDate     string    // 周期起始日期，如 "23_Jan"
	Timesheet     io.Reader // 打卡明细（xlsx / csv）
	TimesheetName string    // 原始文件名，按扩展名选择解析方式
	Roster        io.Reader // 花名册（xlsx）
}

// AuditOutcome 一次对账的输出
type AuditOutcome struct {
	RunID     string
	Start     time.Time
	Roster    *ingest.Roster
	RowErrors []ingest.RowError
	Result    *reconcile.Result
	Report    []byte // Excel 报表内容
	Filename  string // 建议下载文件名
	Cached    bool   // 命中结果缓存，未重新对账
}

// AuditService 对账业务接口
//
// 设计说明：
//   - 对账本身为纯内存计算，结果以 Excel 报表返回，不落库
//   - 启用数据库时仅记录运行元数据（audit_runs），写入失败不影响本次结果
//   - 相同输入（文件内容 + 起始日期 + 偏移小时）在缓存有效期内直接复用结果
type AuditService interface {
	// RunAudit 解析上传文件、执行对账并生成报表
	RunAudit(ctx context.Context, in *AuditInput) (*AuditOutcome, error)
	// ListRuns 分页查询运行历史（按创建时间倒序）
	ListRuns(ctx context.Context, offset, limit int) ([]model.AuditRun, int64, error)
	// GetRun 查询单次运行记录
	GetRun(ctx context.Context, id string) (*model.AuditRun, error)
}

type auditService struct {
	engine *reconcile.Engine
	year   int
	layout ingest.RosterLayout
	cache  *reportCache
	repo   *repository.Repository // nil 表示未启用运行历史
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(cfg *config.Config, engine *reconcile.Engine, repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{
		engine: engine,
		year:   cfg.Audit.Year,
		layout: ingest.RosterLayout{
			FirstRow:   cfg.Audit.RosterFirstRow,
			LastRow:    cfg.Audit.RosterLastRow,
			NameColumn: cfg.Audit.RosterNameColumn,
		},
		cache:  newReportCache(cfg.Cache.Size, cfg.Cache.TTL),
		repo:   repo,
		logger: logger,
	}
}

// ═══════════════════════════════════════════════════════════
// RunAudit：解析 → 对账 → 渲染 → 记录
// ═══════════════════════════════════════════════════════════

func (s *auditService) RunAudit(ctx context.Context, in *AuditInput) (*AuditOutcome, error) {
	// 1. 起始日期
	start, err := ingest.ParseStartDate(in.StartDate, s.year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditInvalidStartDate, err)
	}

	// 2. 读取文件内容并计算摘要
	tsData, err := io.ReadAll(in.Timesheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditTimesheetInvalid, err)
	}
	rosterData, err := io.ReadAll(in.Roster)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditRosterInvalid, err)
	}
	digest := s.digest(start, in.TimesheetName, tsData, rosterData)

	if cached, ok := s.cache.get(digest); ok {
		s.logger.Debug("命中对账结果缓存", zap.String("run_id", cached.RunID))
		out := *cached
		out.Cached = true
		return &out, nil
	}

	// 3. 解析输入
	timesheet, err := ingest.ReadTimesheet(bytes.NewReader(tsData), in.TimesheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditTimesheetInvalid, err)
	}
	roster, err := ingest.ReadRoster(bytes.NewReader(rosterData), start, s.layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditRosterInvalid, err)
	}
	if roster.Fallback {
		s.logger.Warn("未找到周期对应的花名册工作表，使用第一个工作表",
			zap.String("expected", ingest.SheetLabel(start)),
			zap.String("used", roster.Sheet),
		)
	}
	entries := reconcile.BuildRoster(roster.Names)
	if len(entries) == 0 {
		return nil, ErrAuditEmptyRoster
	}

	// 4. 对账
	began := time.Now()
	res, err := s.engine.Reconcile(ctx, start, entries, timesheet.Events)
	if err != nil {
		return nil, err
	}

	// 5. 渲染报表
	buf, err := report.Render(res)
	if err != nil {
		s.logger.Error("生成对账报表失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAuditRenderFailed, err)
	}

	out := &AuditOutcome{
		RunID:     uuid.NewString(),
		Start:     start,
		Roster:    roster,
		RowErrors: timesheet.Errors,
		Result:    res,
		Report:    buf.Bytes(),
		Filename:  report.Filename(start),
	}

	s.logger.Info("对账完成",
		zap.String("run_id", out.RunID),
		zap.String("start_date", start.Format("2006-01-02")),
		zap.String("roster_sheet", roster.Sheet),
		zap.Int("events", len(timesheet.Events)),
		zap.Int("employees", len(res.Rows)),
		zap.Int("exceptions", len(res.Exceptions)),
		zap.Int("remarks", len(res.Remarks)),
		zap.Int("unassigned", res.Unassigned),
		zap.Duration("elapsed", time.Since(began)),
	)

	// 6. 记录运行历史（失败仅告警）
	s.recordRun(ctx, out, in.TimesheetName, digest)

	s.cache.set(digest, out)
	return out, nil
}

// digest 输入摘要：起始日期、偏移小时、明细格式与两个文件内容
func (s *auditService) digest(start time.Time, timesheetName string, parts ...[]byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|", start.Format("2006-01-02"), s.engine.Config().OffsetHours,
		strings.ToLower(filepath.Ext(timesheetName)))
	for _, p := range parts {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *auditService) recordRun(ctx context.Context, out *AuditOutcome, timesheetName, digest string) {
	if !s.historyEnabled() {
		return
	}
	run := &model.AuditRun{
		AuditRunID:     out.RunID,
		StartDate:      out.Start,
		TimesheetName:  timesheetName,
		RosterSheet:    out.Roster.Sheet,
		RosterFallback: out.Roster.Fallback,
		OffsetHours:    s.engine.Config().OffsetHours,
		Employees:      len(out.Result.Rows),
		Exceptions:     len(out.Result.Exceptions),
		Remarks:        len(out.Result.Remarks),
		Unassigned:     out.Result.Unassigned,
		InputDigest:    digest,
	}
	if err := s.repo.AuditRun.Create(ctx, run); err != nil {
		s.logger.Warn("记录对账运行历史失败", zap.String("run_id", out.RunID), zap.Error(err))
	}
}

func (s *auditService) historyEnabled() bool {
	return s.repo != nil && s.repo.AuditRun != nil
}

// ═══════════════════════════════════════════════════════════
// 运行历史
// ═══════════════════════════════════════════════════════════

func (s *auditService) ListRuns(ctx context.Context, offset, limit int) ([]model.AuditRun, int64, error) {
	if !s.historyEnabled() {
		return nil, 0, ErrAuditHistoryDisabled
	}
	runs, total, err := s.repo.AuditRun.List(ctx, offset, limit)
	if err != nil {
		s.logger.Error("查询对账运行历史失败", zap.Error(err))
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *auditService) GetRun(ctx context.Context, id string) (*model.AuditRun, error) {
	if !s.historyEnabled() {
		return nil, ErrAuditHistoryDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAuditRunNotFound
	}
	run, err := s.repo.AuditRun.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditRunNotFound
		}
		s.logger.Error("查询对账运行记录失败", zap.String("run_id", id), zap.Error(err))
		return nil, err
	}
	return run, nil
}
