package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timesheet-auditor/internal/dto"
	"timesheet-auditor/internal/service"
	"timesheet-auditor/pkg/response"
)

// AuditHandler 对账模块 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// RunAudit 上传打卡明细与花名册执行对账
// POST /api/v1/audits?format=xlsx|json
//
// multipart/form-data 字段：
//   - timesheet: 打卡明细（.xlsx / .csv）
//   - roster:    花名册（.xlsx）
//   - start_date: 周期起始日期，如 23_Jan
//
// 默认直接下载 Excel 报表；format=json 返回预览数据
func (h *AuditHandler) RunAudit(c *gin.Context) {
	var q dto.AuditFormatQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 17001, "format 仅支持 json 或 xlsx")
		return
	}

	timesheet, timesheetName, ok := openUpload(c, "timesheet", 17002, "请上传打卡明细文件 timesheet")
	if !ok {
		return
	}
	defer timesheet.Close()

	roster, _, ok := openUpload(c, "roster", 17003, "请上传花名册文件 roster")
	if !ok {
		return
	}
	defer roster.Close()

	startDate := strings.TrimSpace(c.PostForm("start_date"))
	if startDate == "" {
		response.BadRequest(c, 17004, "start_date 不能为空")
		return
	}

	out, err := h.auditSvc.RunAudit(c.Request.Context(), &service.AuditInput{
		StartDate:     startDate,
		Timesheet:     timesheet,
		TimesheetName: timesheetName,
		Roster:        roster,
	})
	if err != nil {
		_ = c.Error(err)
		handleAuditError(c, err)
		return
	}

	if q.Format == "json" {
		response.Created(c, out.Preview())
		return
	}
	c.Header("X-Audit-Run-ID", out.RunID)
	response.Attachment(c, out.Filename, response.XLSXContentType, out.Report)
}

// ListRuns 对账运行历史
// GET /api/v1/audits
func (h *AuditHandler) ListRuns(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	runs, total, err := h.auditSvc.ListRuns(c.Request.Context(), page.GetOffset(), page.GetPageSize())
	if err != nil {
		handleAuditError(c, err)
		return
	}

	list := make([]dto.AuditRunResponse, 0, len(runs))
	for i := range runs {
		list = append(list, service.ToAuditRunResponse(&runs[i]))
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// GetRun 单次对账运行记录
// GET /api/v1/audits/:id
func (h *AuditHandler) GetRun(c *gin.Context) {
	run, err := h.auditSvc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAuditError(c, err)
		return
	}
	response.OK(c, service.ToAuditRunResponse(run))
}

// openUpload 打开 multipart 文件字段；失败时已写入响应，调用方直接 return
func openUpload(c *gin.Context, field string, code int, missingMsg string) (multipart.File, string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if isBodyTooLarge(err) {
			response.PayloadTooLarge(c, 10005, "请求体过大")
			return nil, "", false
		}
		response.BadRequest(c, code, missingMsg)
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, code, missingMsg)
		return nil, "", false
	}
	return f, fh.Filename, true
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func handleAuditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuditInvalidStartDate):
		response.BadRequest(c, 17004, "起始日期格式无效，请使用 日_月 格式（如 23_Jan）")
	case errors.Is(err, service.ErrAuditTimesheetInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17005, "打卡明细文件无效", err.Error())
	case errors.Is(err, service.ErrAuditRosterInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17006, "花名册文件无效", err.Error())
	case errors.Is(err, service.ErrAuditEmptyRoster):
		response.BadRequest(c, 17007, "花名册中没有员工姓名")
	case errors.Is(err, service.ErrAuditHistoryDisabled):
		response.NotFound(c, 17008, "未启用运行历史存储")
	case errors.Is(err, service.ErrAuditRunNotFound):
		response.NotFound(c, 17009, "对账运行记录不存在")
	case isBodyTooLarge(err):
		response.PayloadTooLarge(c, 10005, "请求体过大")
	default:
		response.InternalError(c)
	}
}
