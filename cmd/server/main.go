package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timesheet-auditor/config"
	"timesheet-auditor/internal/api/handler"
	"timesheet-auditor/internal/api/middleware"
	"timesheet-auditor/internal/api/router"
	"timesheet-auditor/internal/reconcile"
	"timesheet-auditor/internal/repository"
	"timesheet-auditor/internal/service"
	"timesheet-auditor/pkg/database"
	applogger "timesheet-auditor/pkg/logger"
	"timesheet-auditor/pkg/redis"
)

func main() {
	// 1. 加载配置（AUDIT_CONFIG_FILE 可指定配置文件路径）
	cfg, err := config.Load(os.Getenv("AUDIT_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("offset_hours", cfg.Audit.OffsetHours),
		zap.Bool("history", cfg.Database.Enabled),
		zap.Bool("rate_limit", cfg.Redis.Enabled),
	)

	// 3. 对账引擎
	engine, err := reconcile.NewEngine(cfg.Audit.Engine())
	if err != nil {
		logger.Fatal("对账引擎配置非法", zap.Error(err))
	}

	// 4. 连接数据库（可选：仅用于运行历史）
	var db *gorm.DB
	var repo *repository.Repository
	if cfg.Database.Enabled {
		db, err = database.NewDB(context.Background(), &cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		repo = repository.NewRepository(db)
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	var limiter middleware.Limiter
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，上传限流将不可用", zap.Error(err))
		} else {
			limiter = rdb
		}
	}

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, engine, repo, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	r := router.Setup(cfg, h, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
