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
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OKPage(c, []int{1, 2}, 41, 1, 20)

	var resp struct {
		Data PageData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Data.Pagination.TotalPages != 3 {
		t.Errorf("期望 TotalPages=3，实际=%d", resp.Data.Pagination.TotalPages)
	}
}

func TestValidationFailed_CarriesFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ValidationFailed(c, 10001, []FieldError{
		{Field: "date", Message: "诊所仅在周一至周五营业"},
		{Field: "time_slot", Message: "时间段必须为 HH:mm 格式"},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Fields []FieldError `json:"fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != 10001 || len(resp.Data.Fields) != 2 {
		t.Errorf("期望 code=10001 且 2 个字段错误，实际 code=%d fields=%d", resp.Code, len(resp.Data.Fields))
	}
}

func TestConflict(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Conflict(c, 40901, "记录已被其他用户修改，请刷新后重试")

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
}
