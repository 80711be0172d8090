package repository

import (
	"context"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// VeterinarianRepository 兽医数据访问接口
type VeterinarianRepository interface {
	Create(ctx context.Context, vet *model.Veterinarian) error
	GetByID(ctx context.Context, id int64) (*model.Veterinarian, error)
	List(ctx context.Context, page Page) ([]model.Veterinarian, int64, error)
	Update(ctx context.Context, vet *model.Veterinarian) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID int64) (bool, error)
}

type veterinarianRepo struct {
	db *gorm.DB
}

// NewVeterinarianRepo 创建 VeterinarianRepository 实例
func NewVeterinarianRepo(db *gorm.DB) VeterinarianRepository {
	return &veterinarianRepo{db: db}
}

func (r *veterinarianRepo) Create(ctx context.Context, vet *model.Veterinarian) error {
	return r.db.WithContext(ctx).Create(vet).Error
}

func (r *veterinarianRepo) GetByID(ctx context.Context, id int64) (*model.Veterinarian, error) {
	var vet model.Veterinarian
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&vet).Error
	if err != nil {
		return nil, err
	}
	return &vet, nil
}

func (r *veterinarianRepo) List(ctx context.Context, page Page) ([]model.Veterinarian, int64, error) {
	var vets []model.Veterinarian
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Veterinarian{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, page).
		Order("last_name, first_name, id").
		Find(&vets).Error; err != nil {
		return nil, 0, err
	}
	return vets, total, nil
}

func (r *veterinarianRepo) Update(ctx context.Context, vet *model.Veterinarian) error {
	oldVersion := vet.Version
	result := r.db.WithContext(ctx).
		Model(&model.Veterinarian{}).
		Where("id = ? AND version = ?", vet.ID, oldVersion).
		Updates(map[string]interface{}{
			"first_name":   vet.FirstName,
			"last_name":    vet.LastName,
			"speciality":   vet.Speciality,
			"phone_number": vet.PhoneNumber,
			"email":        vet.Email,
			"updated_by":   vet.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	vet.Version = oldVersion + 1
	return nil
}

func (r *veterinarianRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Veterinarian{}).Error
}

func (r *veterinarianRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Veterinarian{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID))
}

func (r *veterinarianRepo) ExistsByPhone(ctx context.Context, phone string, excludeID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Veterinarian{}).
		Where("phone_number = ? AND id <> ?", phone, excludeID))
}

// exists 对已带条件的查询做存在性检查
func exists(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
