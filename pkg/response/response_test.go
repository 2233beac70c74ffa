package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{12, 5, 3},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		OKPage(c, []int{}, tt.total, 1, tt.pageSize)

		var resp struct {
			Data PageData `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if resp.Data.Pagination.TotalPages != tt.want {
			t.Errorf("total=%d page_size=%d 期望 %d 页，实际 %d", tt.total, tt.pageSize, tt.want, resp.Data.Pagination.TotalPages)
		}
	}
}

func TestError_CarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(requestIDKey, "rid-1")

	ErrorWithDetails(c, http.StatusBadRequest, 17005, "打卡明细文件无效", "missing header")

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if w.Code != http.StatusBadRequest || resp.Code != 17005 || resp.Details != "missing header" || resp.RequestID != "rid-1" {
		t.Errorf("错误响应不匹配: %d %+v", w.Code, resp)
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Attachment(c, "Audit Report.xlsx", XLSXContentType, []byte("data"))

	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename*=UTF-8''Audit+Report.xlsx" {
		t.Errorf("Content-Disposition 不匹配: %s", got)
	}
	if w.Header().Get("Content-Type") != XLSXContentType || w.Body.String() != "data" {
		t.Errorf("响应内容不匹配")
	}
}
