package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
	"animal-care-clinic/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidToken       = errors.New("token 无效或已失效")
)

// TokenBlacklist Token 黑名单存储，*redis.Client 实现该接口
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Access Token（及可选的 Refresh Token）加入黑名单
	Logout(ctx context.Context, jti string, expiresAt time.Time, refreshToken string) error
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	CreateAccount(ctx context.Context, req *dto.CreateUserAccountRequest) (*dto.UserResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时登出与刷新不做黑名单处理
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询账号；用户名不存在与密码错误返回同一错误
	user, err := s.repo.UserAccount.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询账号失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Refresh ──────────────────────

// Refresh 使用 Refresh Token 换发新 Token 对，旧 Refresh Token 随即作废
func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	// 重新读取账号，角色变更即时生效
	user, err := s.repo.UserAccount.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询账号失败", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	resp, err := s.issueTokens(user, claims.RememberMe)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	return resp, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time, refreshToken string) error {
	s.revoke(ctx, jti, expiresAt)

	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.TokenType == jwt.TokenTypeRefresh {
			s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.repo.UserAccount.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询账号失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── CreateAccount ──────────────────────

// CreateAccount 创建登录账号，兽医账号须关联已存在的兽医
func (s *authService) CreateAccount(ctx context.Context, req *dto.CreateUserAccountRequest) (*dto.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)

	ve := &ValidationError{}
	validateStruct(ve, req)

	var vet *model.Veterinarian
	if req.Role == model.RoleVeterinarian && req.VeterinarianID != nil {
		v, err := s.repo.Veterinarian.GetByID(ctx, *req.VeterinarianID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("veterinarian_id", msgVeterinarianNotFound)
		case err != nil:
			return nil, err
		default:
			vet = v
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.UserAccount{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if req.Role == model.RoleVeterinarian {
		user.VeterinarianID = req.VeterinarianID
	}

	if err := s.repo.UserAccount.Create(ctx, user); err != nil {
		if dup, ok := duplicateFields(err); ok {
			return nil, dup
		}
		s.logger.Error("创建账号失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	user.Veterinarian = vet

	resp := toUserResponse(user)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.UserAccount, rememberMe bool) (*dto.TokenResponse, error) {
	sub := jwt.Subject{UserID: user.ID, Role: user.Role}
	if user.VeterinarianID != nil {
		sub.VeterinarianID = *user.VeterinarianID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(sub)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(sub, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// revoke 加入黑名单直至 Token 过期；黑名单不可用时仅记录告警
func (s *authService) revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
	}
}

func toUserResponse(u *model.UserAccount) dto.UserResponse {
	resp := dto.UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role,
		VeterinarianID: u.VeterinarianID,
	}
	if u.Veterinarian != nil {
		resp.Veterinarian = toVeterinarianResponse(u.Veterinarian)
	}
	return resp
}
