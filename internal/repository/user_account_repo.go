package repository

import (
	"context"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
)

// UserAccountRepository 登录账号数据访问接口
type UserAccountRepository interface {
	Create(ctx context.Context, user *model.UserAccount) error
	GetByID(ctx context.Context, id int64) (*model.UserAccount, error)
	GetByUsername(ctx context.Context, username string) (*model.UserAccount, error)
}

type userAccountRepo struct {
	db *gorm.DB
}

// NewUserAccountRepo 创建 UserAccountRepository 实例
func NewUserAccountRepo(db *gorm.DB) UserAccountRepository {
	return &userAccountRepo{db: db}
}

func (r *userAccountRepo) Create(ctx context.Context, user *model.UserAccount) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userAccountRepo) GetByID(ctx context.Context, id int64) (*model.UserAccount, error) {
	var user model.UserAccount
	err := r.db.WithContext(ctx).
		Preload("Veterinarian").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userAccountRepo) GetByUsername(ctx context.Context, username string) (*model.UserAccount, error) {
	var user model.UserAccount
	err := r.db.WithContext(ctx).
		Preload("Veterinarian").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
