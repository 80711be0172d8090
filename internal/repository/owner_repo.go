package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// OwnerRepository 宠物主人数据访问接口
type OwnerRepository interface {
	Create(ctx context.Context, owner *model.Owner) error
	GetByID(ctx context.Context, id int64) (*model.Owner, error)
	List(ctx context.Context, query string, page Page) ([]model.Owner, int64, error)
	Update(ctx context.Context, owner *model.Owner) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID int64) (bool, error)
}

type ownerRepo struct {
	db *gorm.DB
}

// NewOwnerRepo 创建 OwnerRepository 实例
func NewOwnerRepo(db *gorm.DB) OwnerRepository {
	return &ownerRepo{db: db}
}

func (r *ownerRepo) Create(ctx context.Context, owner *model.Owner) error {
	return r.db.WithContext(ctx).Create(owner).Error
}

func (r *ownerRepo) GetByID(ctx context.Context, id int64) (*model.Owner, error) {
	var owner model.Owner
	err := r.db.WithContext(ctx).
		Preload("Animals").
		Where("id = ?", id).
		First(&owner).Error
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// List 支持按姓名、邮箱、电话模糊搜索
func (r *ownerRepo) List(ctx context.Context, query string, page Page) ([]model.Owner, int64, error) {
	var owners []model.Owner
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Owner{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR phone_number LIKE ?",
			like, like, like, like,
		)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, page).
		Order("last_name, first_name, id").
		Find(&owners).Error; err != nil {
		return nil, 0, err
	}
	return owners, total, nil
}

func (r *ownerRepo) Update(ctx context.Context, owner *model.Owner) error {
	oldVersion := owner.Version
	result := r.db.WithContext(ctx).
		Model(&model.Owner{}).
		Where("id = ? AND version = ?", owner.ID, oldVersion).
		Updates(map[string]interface{}{
			"first_name":   owner.FirstName,
			"last_name":    owner.LastName,
			"address":      owner.Address,
			"phone_number": owner.PhoneNumber,
			"email":        owner.Email,
			"updated_by":   owner.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	owner.Version = oldVersion + 1
	return nil
}

func (r *ownerRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Owner{}).Error
}

func (r *ownerRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Owner{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID))
}

func (r *ownerRepo) ExistsByPhone(ctx context.Context, phone string, excludeID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Owner{}).
		Where("phone_number = ? AND id <> ?", phone, excludeID))
}
