package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
)

// 每个 up 迁移都必须有对应的 down 迁移
func TestMigrations_UpDownPaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("读取迁移目录失败: %v", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	if len(names) == 0 {
		t.Fatal("迁移目录为空")
	}

	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if !names[down] {
				t.Errorf("%s 缺少对应的 %s", name, down)
			}
		}
	}
}

func TestMigrations_ScheduleSlotUnique(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_init_schema.up.sql")
	if err != nil {
		t.Fatalf("读取初始迁移失败: %v", err)
	}
	if !strings.Contains(string(b), "uq_schedules_vet_slot") {
		t.Error("schedules 表必须带 (veterinarian_id, date, time_slot) 唯一约束")
	}
}

func TestGormLogLevel(t *testing.T) {
	if gormLogLevel("debug") <= gormLogLevel("info") {
		t.Error("debug 级别应打印比 info 更多的 SQL 日志")
	}
}

func TestLatestVersion_Embedded(t *testing.T) {
	latest, err := latestVersion(migrationsFS)
	if err != nil {
		t.Fatalf("latestVersion 应成功: %v", err)
	}
	if latest != 2 {
		t.Errorf("期望最新版本 2（含报表视图），实际=%d", latest)
	}
}

func TestLatestVersion_InvalidName(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_init.up.sql": {Data: []byte("SELECT 1;")},
		"migrations/init_views.up.sql":  {Data: []byte("SELECT 1;")},
	}
	if _, err := latestVersion(fsys); err == nil {
		t.Error("无版本号前缀的迁移文件应返回错误")
	}
}

func TestCheckVersion(t *testing.T) {
	cases := []struct {
		name    string
		version uint
		dirty   bool
		wantErr bool
	}{
		{"已是最新", 2, false, false},
		{"数据库更新", 3, false, false},
		{"数据库落后", 1, false, true},
		{"dirty", 2, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkVersion(tc.version, 2, tc.dirty, zap.NewNop())
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v，实际=%v", tc.wantErr, err)
			}
		})
	}
}
