package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timesheet-auditor/config"
	"timesheet-auditor/internal/api/handler"
	"timesheet-auditor/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时上传接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.Limiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 对账模块
		audits := v1.Group("/audits")
		{
			audits.POST("",
				middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger),
				middleware.BodyLimit(cfg.Server.MaxUploadMB<<20),
				h.Audit.RunAudit,
			)
			audits.GET("", h.Audit.ListRuns)
			audits.GET("/:id", h.Audit.GetRun)
		}
	}

	return r
}
