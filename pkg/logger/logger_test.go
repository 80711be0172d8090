package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"animal-care-clinic/config"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := NewLogger(&config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger 应成功: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("warn 级别下不应输出 info 日志")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("warn 级别下应输出 error 日志")
	}
}

func TestNewLogger_Console(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "debug", Format: "console"}); err != nil {
		t.Fatalf("console 格式应成功: %v", err)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("无效日志级别应返回错误")
	}
}

func TestRedactCore_MasksConfiguredKeys(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(newRedactCore(core, []string{"phone", "Email"}))

	fields := []zap.Field{zap.String("phone", "0612345678"), zap.Int64("owner_id", 3)}
	logger.With(zap.String("email", "jean@example.com")).Info("创建宠物主人", fields...)

	if fields[0].String != "0612345678" {
		t.Error("不应修改调用方传入的字段")
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条日志，实际=%d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["phone"] != redactedValue || ctx["email"] != redactedValue {
		t.Errorf("phone/email 应被遮盖，实际=%v", ctx)
	}
	if ctx["owner_id"] != int64(3) {
		t.Errorf("非敏感字段应原样输出，实际=%v", ctx["owner_id"])
	}
}

func TestRedactCore_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(newRedactCore(core, []string{"password"}))

	logger.Info("忽略")
	logger.Warn("登录失败", zap.String("password", "hunter2"))

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条日志，实际=%d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["password"]; got != redactedValue {
		t.Errorf("password 应被遮盖，实际=%v", got)
	}
}
