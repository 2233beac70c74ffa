package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timesheet-auditor/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（上传接口按 server.max_upload_mb 配置）
//
// 声明了 Content-Length 且超限的请求直接返回 413；
// 未声明长度的请求在读取时由 http.MaxBytesReader 截断，
// Handler 解析表单时会得到 *http.MaxBytesError。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.PayloadTooLarge(c, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
