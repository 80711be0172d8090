package repository

import (
	"context"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// VisitHistoryFilter 就诊记录过滤条件
type VisitHistoryFilter struct {
	AnimalID       *int64
	OwnerID        *int64 // 仅摘要视图支持
	VeterinarianID *int64
	Page
}

// VisitHistoryRepository 就诊记录数据访问接口
type VisitHistoryRepository interface {
	Create(ctx context.Context, visit *model.VisitHistory) error
	GetByID(ctx context.Context, id int64) (*model.VisitHistory, error)
	List(ctx context.Context, filter VisitHistoryFilter) ([]model.VisitHistory, int64, error)
	Update(ctx context.Context, visit *model.VisitHistory) error
	Delete(ctx context.Context, id int64) error
	CountByAppointment(ctx context.Context, appointmentID int64) (int64, error)
	ListSummaries(ctx context.Context, filter VisitHistoryFilter) ([]model.VisitSummary, error)
}

type visitHistoryRepo struct {
	db *gorm.DB
}

// NewVisitHistoryRepo 创建 VisitHistoryRepository 实例
func NewVisitHistoryRepo(db *gorm.DB) VisitHistoryRepository {
	return &visitHistoryRepo{db: db}
}

func (r *visitHistoryRepo) Create(ctx context.Context, visit *model.VisitHistory) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *visitHistoryRepo) GetByID(ctx context.Context, id int64) (*model.VisitHistory, error) {
	var visit model.VisitHistory
	err := r.db.WithContext(ctx).
		Preload("Animal").
		Preload("Veterinarian").
		Where("id = ?", id).
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *visitHistoryRepo) List(ctx context.Context, filter VisitHistoryFilter) ([]model.VisitHistory, int64, error) {
	var visits []model.VisitHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.VisitHistory{})
	if filter.AnimalID != nil {
		db = db.Where("animal_id = ?", *filter.AnimalID)
	}
	if filter.VeterinarianID != nil {
		db = db.Where("veterinarian_id = ?", *filter.VeterinarianID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, filter.Page).
		Preload("Animal").
		Preload("Veterinarian").
		Order("visit_date DESC, id DESC").
		Find(&visits).Error; err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func (r *visitHistoryRepo) Update(ctx context.Context, visit *model.VisitHistory) error {
	oldVersion := visit.Version
	result := r.db.WithContext(ctx).
		Model(&model.VisitHistory{}).
		Where("id = ? AND version = ?", visit.ID, oldVersion).
		Updates(map[string]interface{}{
			"appointment_id":  visit.AppointmentID,
			"animal_id":       visit.AnimalID,
			"veterinarian_id": visit.VeterinarianID,
			"visit_date":      visit.VisitDate,
			"diagnosis":       visit.Diagnosis,
			"treatment":       visit.Treatment,
			"prescription":    visit.Prescription,
			"updated_by":      visit.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	visit.Version = oldVersion + 1
	return nil
}

func (r *visitHistoryRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.VisitHistory{}).Error
}

func (r *visitHistoryRepo) CountByAppointment(ctx context.Context, appointmentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.VisitHistory{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count, err
}

// ListSummaries 读取 vw_visit_summary 视图
func (r *visitHistoryRepo) ListSummaries(ctx context.Context, filter VisitHistoryFilter) ([]model.VisitSummary, error) {
	var summaries []model.VisitSummary

	db := r.db.WithContext(ctx).Model(&model.VisitSummary{})
	if filter.AnimalID != nil {
		db = db.Where("animal_id = ?", *filter.AnimalID)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.VeterinarianID != nil {
		db = db.Where("veterinarian_id = ?", *filter.VeterinarianID)
	}

	err := paginate(db, filter.Page).
		Order("visit_date DESC, visit_id DESC").
		Find(&summaries).Error
	return summaries, err
}
