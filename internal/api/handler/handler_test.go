package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timesheet-auditor/internal/ingest"
	"timesheet-auditor/internal/model"
	"timesheet-auditor/internal/reconcile"
	"timesheet-auditor/internal/service"
	"timesheet-auditor/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuditService ──

type mockAuditService struct {
	runResult  *service.AuditOutcome
	runErr     error
	lastInput  *service.AuditInput
	lastBytes  string
	listResult []model.AuditRun
	listTotal  int64
	listErr    error
	getResult  *model.AuditRun
	getErr     error
}

func (m *mockAuditService) RunAudit(_ context.Context, in *service.AuditInput) (*service.AuditOutcome, error) {
	m.lastInput = in
	b, _ := io.ReadAll(in.Timesheet)
	m.lastBytes = string(b)
	return m.runResult, m.runErr
}
func (m *mockAuditService) ListRuns(_ context.Context, _, _ int) ([]model.AuditRun, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockAuditService) GetRun(_ context.Context, _ string) (*model.AuditRun, error) {
	return m.getResult, m.getErr
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// uploadBody 构造 multipart 请求体；files 为 字段名 → 文件名/内容
func uploadBody(fields map[string]string, files map[string][2]string) (io.Reader, string) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for field, f := range files {
		part, _ := mw.CreateFormFile(field, f[0])
		_, _ = part.Write([]byte(f[1]))
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

func sampleOutcome() *service.AuditOutcome {
	start := time.Date(2026, time.January, 23, 0, 0, 0, 0, time.UTC)
	days := reconcile.PeriodDates(start, reconcile.PeriodDays)
	row := reconcile.SummaryRow{Employee: "A. Lee"}
	for _, d := range days {
		row.Days = append(row.Days, reconcile.DayRecord{Date: d})
	}
	row.Days[0].Login = reconcile.Present(start.Add(6 * time.Hour))
	row.Days[0].Logout = reconcile.Mark{Kind: reconcile.MarkNoLogout}

	return &service.AuditOutcome{
		RunID:  "run-1",
		Start:  start,
		Roster: &ingest.Roster{Sheet: "23 Jan - 29 Jan", Names: []string{"A. Lee"}},
		Result: &reconcile.Result{
			Days: days,
			Rows: []reconcile.SummaryRow{row},
			Exceptions: []reconcile.ExceptionRecord{
				{Employee: "A. Lee", Date: days[0], Time: row.Days[0].Login, Reason: reconcile.ReasonMissingLogout},
			},
		},
		Report:   []byte("xlsx-bytes"),
		Filename: "Audit_Report_23_Jan.xlsx",
	}
}

func validUpload() (io.Reader, string) {
	return uploadBody(
		map[string]string{"start_date": "23_Jan"},
		map[string][2]string{
			"timesheet": {"detail.csv", "Name,Date Time,Type\n"},
			"roster":    {"roster.xlsx", "roster"},
		},
	)
}

// ═══════════════════════════════════════════════════════════
// AuditHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuditHandler_RunAudit_Download(t *testing.T) {
	mock := &mockAuditService{runResult: sampleOutcome()}
	h := NewAuditHandler(mock)
	r, _, w := setupGin()
	r.POST("/audits", h.RunAudit)

	body, ct := validUpload()
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != response.XLSXContentType {
		t.Errorf("Content-Type 不匹配: %s", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename*=UTF-8''Audit_Report_23_Jan.xlsx" {
		t.Errorf("Content-Disposition 不匹配: %s", got)
	}
	if w.Header().Get("X-Audit-Run-ID") != "run-1" || w.Body.String() != "xlsx-bytes" {
		t.Errorf("响应内容不匹配: %s", w.Body.String())
	}
	if mock.lastInput.StartDate != "23_Jan" || mock.lastInput.TimesheetName != "detail.csv" {
		t.Errorf("输入未正确传递: %+v", mock.lastInput)
	}
	if mock.lastBytes != "Name,Date Time,Type\n" {
		t.Errorf("文件内容未正确传递: %q", mock.lastBytes)
	}
}

func TestAuditHandler_RunAudit_JSONPreview(t *testing.T) {
	mock := &mockAuditService{runResult: sampleOutcome()}
	h := NewAuditHandler(mock)
	r, _, w := setupGin()
	r.POST("/audits", h.RunAudit)

	body, ct := validUpload()
	req := httptest.NewRequest(http.MethodPost, "/audits?format=json", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			RunID          string `json:"run_id"`
			ExceptionCount int    `json:"exception_count"`
			Summary        []struct {
				Employee string   `json:"employee"`
				Values   []string `json:"values"`
			} `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Data.RunID != "run-1" || resp.Data.ExceptionCount != 1 {
		t.Errorf("预览字段不匹配: %+v", resp.Data)
	}
	if len(resp.Data.Summary) != 1 || resp.Data.Summary[0].Values[0] != "06:00" || resp.Data.Summary[0].Values[1] != "NO LOGOUT" {
		t.Errorf("汇总行不匹配: %+v", resp.Data.Summary)
	}
}

func TestAuditHandler_RunAudit_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		fields   map[string]string
		files    map[string][2]string
		wantCode int
	}{
		{
			name:     "format 非法",
			query:    "?format=pdf",
			fields:   map[string]string{"start_date": "23_Jan"},
			files:    map[string][2]string{"timesheet": {"a.csv", "x"}, "roster": {"r.xlsx", "x"}},
			wantCode: 17001,
		},
		{
			name:     "缺少明细",
			fields:   map[string]string{"start_date": "23_Jan"},
			files:    map[string][2]string{"roster": {"r.xlsx", "x"}},
			wantCode: 17002,
		},
		{
			name:     "缺少花名册",
			fields:   map[string]string{"start_date": "23_Jan"},
			files:    map[string][2]string{"timesheet": {"a.csv", "x"}},
			wantCode: 17003,
		},
		{
			name:     "缺少起始日期",
			files:    map[string][2]string{"timesheet": {"a.csv", "x"}, "roster": {"r.xlsx", "x"}},
			wantCode: 17004,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuditService{runResult: sampleOutcome()}
			h := NewAuditHandler(mock)
			r, _, w := setupGin()
			r.POST("/audits", h.RunAudit)

			body, ct := uploadBody(tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/audits"+tt.query, body)
			req.Header.Set("Content-Type", ct)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("期望 400，实际 %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望业务码 %d，实际 %d", tt.wantCode, resp.Code)
			}
			if mock.lastInput != nil {
				t.Error("参数错误时不应调用 Service")
			}
		})
	}
}

func TestAuditHandler_RunAudit_ServiceErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{fmt.Errorf("%w: %w", service.ErrAuditInvalidStartDate, ingest.ErrInvalidStartDate), http.StatusBadRequest, 17004},
		{fmt.Errorf("%w: %w", service.ErrAuditTimesheetInvalid, ingest.ErrTimesheetBadHeader), http.StatusBadRequest, 17005},
		{fmt.Errorf("%w: %w", service.ErrAuditRosterInvalid, ingest.ErrRosterNoSheet), http.StatusBadRequest, 17006},
		{service.ErrAuditEmptyRoster, http.StatusBadRequest, 17007},
		{service.ErrAuditRenderFailed, http.StatusInternalServerError, 50000},
		{errors.New("unexpected"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewAuditHandler(&mockAuditService{runErr: tt.err})
			r, _, w := setupGin()
			r.POST("/audits", h.RunAudit)

			body, ct := validUpload()
			req := httptest.NewRequest(http.MethodPost, "/audits", body)
			req.Header.Set("Content-Type", ct)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望业务码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuditHandler_RunAudit_TooLarge(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{runResult: sampleOutcome()})
	r, _, w := setupGin()
	r.POST("/audits", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)
		c.Next()
	}, h.RunAudit)

	body, ct := validUpload()
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}
}

func TestAuditHandler_ListRuns(t *testing.T) {
	mock := &mockAuditService{
		listResult: []model.AuditRun{
			{AuditRunID: "run-2", StartDate: time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC), Employees: 4},
			{AuditRunID: "run-1", StartDate: time.Date(2026, time.January, 23, 0, 0, 0, 0, time.UTC), Employees: 3},
		},
		listTotal: 12,
	}
	h := NewAuditHandler(mock)
	r, _, w := setupGin()
	r.GET("/audits", h.ListRuns)

	req := httptest.NewRequest(http.MethodGet, "/audits?page=2&page_size=5", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var resp struct {
		Data struct {
			List []struct {
				RunID     string `json:"run_id"`
				StartDate string `json:"start_date"`
			} `json:"list"`
			Pagination response.Pagination `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Data.List) != 2 || resp.Data.List[0].StartDate != "2026-01-30" {
		t.Errorf("列表不匹配: %+v", resp.Data.List)
	}
	if p := resp.Data.Pagination; p.Page != 2 || p.PageSize != 5 || p.Total != 12 || p.TotalPages != 3 {
		t.Errorf("分页不匹配: %+v", p)
	}
}

func TestAuditHandler_ListRuns_Errors(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{listErr: service.ErrAuditHistoryDisabled})
	r, _, w := setupGin()
	r.GET("/audits", h.ListRuns)

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audits", nil))
	if w.Code != http.StatusNotFound || parseResponse(w).Code != 17008 {
		t.Errorf("历史未启用应返回 404/17008，实际 %d/%d", w.Code, parseResponse(w).Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audits?page_size=1000", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("page_size 超限应返回 400，实际 %d", w.Code)
	}
}

func TestAuditHandler_GetRun(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{getErr: service.ErrAuditRunNotFound})
	r, _, w := setupGin()
	r.GET("/audits/:id", h.GetRun)

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audits/missing", nil))
	if w.Code != http.StatusNotFound || parseResponse(w).Code != 17009 {
		t.Errorf("期望 404/17009，实际 %d/%d", w.Code, parseResponse(w).Code)
	}

	h = NewAuditHandler(&mockAuditService{getResult: &model.AuditRun{AuditRunID: "run-1", RosterSheet: "23 Jan - 29 Jan"}})
	r, _, w = setupGin()
	r.GET("/audits/:id", h.GetRun)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audits/run-1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}
