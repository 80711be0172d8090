package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationStatementTimeout = 30 * time.Second

// RunMigrations 执行数据库迁移
// 日历与报表依赖迁移创建的视图，迁移后的版本低于程序内置的最新版本时返回错误
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	latest, err := latestVersion(migrationsFS)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:  "schema_migrations",
		StatementTimeout: migrationStatementTimeout,
	})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	return checkVersion(version, latest, dirty, logger)
}

// checkVersion 数据库版本高于内置版本时只告警，旧程序仍可读取已有的表与视图
func checkVersion(version, latest uint, dirty bool, logger *zap.Logger) error {
	switch {
	case dirty:
		return fmt.Errorf("数据库迁移处于 dirty 状态 (version=%d)，需人工修复", version)
	case version < latest:
		return fmt.Errorf("数据库版本 %d 低于程序所需的 %d", version, latest)
	case version > latest:
		logger.Warn("数据库版本高于程序内置迁移", zap.Uint("version", version), zap.Uint("latest", latest))
	default:
		logger.Info("数据库迁移完成", zap.Uint("version", version))
	}
	return nil
}

// latestVersion 返回内置迁移文件中最大的版本号（文件名形如 000002_xxx.up.sql）
func latestVersion(fsys fs.FS) (uint, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return 0, fmt.Errorf("读取迁移目录失败: %w", err)
	}

	var latest uint
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return 0, fmt.Errorf("迁移文件名无效: %s", e.Name())
		}
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("迁移文件名无效: %s", e.Name())
		}
		if uint(v) > latest {
			latest = uint(v)
		}
	}
	if latest == 0 {
		return 0, errors.New("没有可用的迁移文件")
	}
	return latest, nil
}
