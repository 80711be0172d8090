package service

import (
	"time"

	"animal-care-clinic/internal/model"
)

const timestampLayout = time.RFC3339

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

// parseOptionalDate 解析可选日期过滤参数，空串返回 nil
func parseOptionalDate(ve *ValidationError, field, s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		ve.Add(field, "日期格式无效，应为 yyyy-MM-dd")
		return nil
	}
	return &t
}

func int64Ptr(v int64) *int64 { return &v }
