package repository

import (
	"context"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// AnimalRepository 动物数据访问接口
type AnimalRepository interface {
	Create(ctx context.Context, animal *model.Animal) error
	GetByID(ctx context.Context, id int64) (*model.Animal, error)
	List(ctx context.Context, ownerID *int64, page Page) ([]model.Animal, int64, error)
	Update(ctx context.Context, animal *model.Animal) error
	Delete(ctx context.Context, id int64) error
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

type animalRepo struct {
	db *gorm.DB
}

// NewAnimalRepo 创建 AnimalRepository 实例
func NewAnimalRepo(db *gorm.DB) AnimalRepository {
	return &animalRepo{db: db}
}

func (r *animalRepo) Create(ctx context.Context, animal *model.Animal) error {
	return r.db.WithContext(ctx).Create(animal).Error
}

func (r *animalRepo) GetByID(ctx context.Context, id int64) (*model.Animal, error) {
	var animal model.Animal
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&animal).Error
	if err != nil {
		return nil, err
	}
	return &animal, nil
}

func (r *animalRepo) List(ctx context.Context, ownerID *int64, page Page) ([]model.Animal, int64, error) {
	var animals []model.Animal
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Animal{})
	if ownerID != nil {
		db = db.Where("owner_id = ?", *ownerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, page).
		Preload("Owner").
		Order("name, id").
		Find(&animals).Error; err != nil {
		return nil, 0, err
	}
	return animals, total, nil
}

func (r *animalRepo) Update(ctx context.Context, animal *model.Animal) error {
	oldVersion := animal.Version
	result := r.db.WithContext(ctx).
		Model(&model.Animal{}).
		Where("id = ? AND version = ?", animal.ID, oldVersion).
		Updates(map[string]interface{}{
			"owner_id":        animal.OwnerID,
			"name":            animal.Name,
			"species":         animal.Species,
			"age":             animal.Age,
			"gender":          animal.Gender,
			"medical_history": animal.MedicalHistory,
			"updated_by":      animal.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	animal.Version = oldVersion + 1
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Animal{}).Error
}

func (r *animalRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Animal{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}
