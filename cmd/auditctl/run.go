package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timesheet-auditor/config"
	"timesheet-auditor/internal/reconcile"
	"timesheet-auditor/internal/service"
	applogger "timesheet-auditor/pkg/logger"
)

// runOptions run 子命令参数
type runOptions struct {
	timesheet string
	roster    string
	start     string
	out       string
	offset    int
	workers   int
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an audit and write the Excel report",
		Example: `  auditctl run --timesheet detail.xlsx --roster roster.xlsx --start 23_Jan
  auditctl run -t detail.csv -r roster.xlsx -s 2026-01-23 -o out/report.xlsx --offset 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAudit(ctx, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.timesheet, "timesheet", "t", "", "clock-event detail file (.xlsx or .csv)")
	f.StringVarP(&opts.roster, "roster", "r", "", "roster workbook (.xlsx)")
	f.StringVarP(&opts.start, "start", "s", "", "first day of the period, e.g. 23_Jan")
	f.StringVarP(&opts.out, "out", "o", "", "report path (default ./Audit_Report_<dd>_<Mon>.xlsx)")
	f.IntVar(&opts.offset, "offset", -1, "operational day offset in hours (default from config)")
	f.IntVar(&opts.workers, "workers", 0, "parallel employees (default from config)")
	_ = cmd.MarkFlagRequired("timesheet")
	_ = cmd.MarkFlagRequired("roster")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func runAudit(ctx context.Context, opts *runOptions, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.offset >= 0 {
		cfg.Audit.OffsetHours = opts.offset
	}
	if opts.workers > 0 {
		cfg.Audit.Workers = opts.workers
	}
	// 命令行只跑一次，结果缓存没有意义
	cfg.Cache.Size = 0

	cfg.Log.Format = "console"
	if verbose {
		cfg.Log.Level = "debug"
	} else {
		cfg.Log.Level = "warn"
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	engine, err := reconcile.NewEngine(cfg.Audit.Engine())
	if err != nil {
		return err
	}
	svc := service.NewAuditService(cfg, engine, nil, logger)

	timesheet, err := os.Open(opts.timesheet)
	if err != nil {
		return fmt.Errorf("打开打卡明细失败: %w", err)
	}
	defer timesheet.Close()

	roster, err := os.Open(opts.roster)
	if err != nil {
		return fmt.Errorf("打开花名册失败: %w", err)
	}
	defer roster.Close()

	out, err := svc.RunAudit(ctx, &service.AuditInput{
		StartDate:     opts.start,
		Timesheet:     timesheet,
		TimesheetName: filepath.Base(opts.timesheet),
		Roster:        roster,
	})
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = out.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, out.Report, 0o644); err != nil {
		return fmt.Errorf("写入报表失败: %w", err)
	}
	logger.Debug("报表已写入", zap.String("path", path), zap.Int("bytes", len(out.Report)))

	printOutcome(stdout, out, path)
	return nil
}
