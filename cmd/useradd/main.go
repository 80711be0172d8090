// useradd 创建登录账号，用于初始化空数据库后的首个管理员或新增员工账号。
//
//	CLINIC_USERADD_PASSWORD=... useradd -username admin -role admin
//	useradd -username dr.lee -role veterinarian -vet 3 -password '...'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"animal-care-clinic/config"
	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/repository"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/database"
	"animal-care-clinic/pkg/jwt"
	applogger "animal-care-clinic/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CLINIC_CONFIG"), "配置文件路径")
	username := flag.String("username", "", "登录名")
	password := flag.String("password", os.Getenv("CLINIC_USERADD_PASSWORD"), "密码（也可通过 CLINIC_USERADD_PASSWORD 传入）")
	role := flag.String("role", "secretary", "角色: admin | secretary | veterinarian")
	vetID := flag.Int64("vet", 0, "关联兽医 ID（role=veterinarian 时必填）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	req := &dto.CreateUserAccountRequest{
		Username: *username,
		Password: *password,
		Role:     *role,
	}
	if *vetID > 0 {
		req.VeterinarianID = vetID
	}

	authSvc := service.NewAuthService(repository.NewRepository(db), jwt.NewManager(&cfg.Auth), nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := authSvc.CreateAccount(ctx, req)
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			for _, f := range ve.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
		}
		logger.Fatal("创建账号失败", zap.Error(err))
	}

	logger.Info("账号已创建",
		zap.Int64("id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
}
